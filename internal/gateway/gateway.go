// Package gateway exposes the voice input subsystem over WebSocket sessions
// and a small REST API.
package gateway

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-input/internal/analysis"
	"github.com/lexiqai/voice-input/internal/commands"
	"github.com/lexiqai/voice-input/internal/config"
	"github.com/lexiqai/voice-input/internal/recognition"
	"github.com/lexiqai/voice-input/internal/store"
	"github.com/lexiqai/voice-input/internal/tts"
)

// Store is the persistence the gateway needs.
type Store interface {
	GetPreferences(ctx context.Context, userID string) (store.Preferences, error)
	PutPreferences(ctx context.Context, p store.Preferences) (store.Preferences, error)
	SaveDictation(ctx context.Context, userID, text string) (*store.Dictation, error)
	ListDictations(ctx context.Context, userID string, limit int) ([]store.Dictation, error)
}

// Options are the gateway's dependencies. Synthesizer, Analyzer and
// ServerEngine may be nil.
type Options struct {
	Config       *config.Config
	Commands     *commands.Registry
	Store        Store
	Synthesizer  tts.Synthesizer
	Analyzer     analysis.ContentAnalyzer
	ServerEngine recognition.Capability
	Logger       zerolog.Logger
}

// Gateway owns the live sessions.
type Gateway struct {
	cfg          *config.Config
	commands     *commands.Registry
	store        Store
	synthesizer  tts.Synthesizer
	analyzer     analysis.ContentAnalyzer
	serverEngine recognition.Capability
	logger       zerolog.Logger
	validate     *validator.Validate
	upgrader     websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// New creates a gateway.
func New(opts Options) *Gateway {
	g := &Gateway{
		cfg:          opts.Config,
		commands:     opts.Commands,
		store:        opts.Store,
		synthesizer:  opts.Synthesizer,
		analyzer:     opts.Analyzer,
		serverEngine: opts.ServerEngine,
		logger:       opts.Logger.With().Str("component", "gateway").Logger(),
		validate:     validator.New(),
		sessions:     make(map[string]*Session),
	}
	if g.synthesizer == nil {
		g.synthesizer = tts.Silent{}
	}
	if g.analyzer == nil {
		g.analyzer = analysis.Unavailable{}
	}
	if g.serverEngine == nil {
		g.serverEngine = recognition.Unsupported{}
	}
	g.upgrader = websocket.Upgrader{
		CheckOrigin:     g.checkOrigin,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	return g
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(g.cfg.AllowedOrigins, origin)
}

// RegisterRoutes adds the WebSocket and REST routes to mux.
func (g *Gateway) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /voice/ws", g.HandleVoiceWS)

	mux.HandleFunc("GET /api/commands", g.handleListCommands)
	mux.HandleFunc("GET /api/commands/suggest", g.handleSuggest)
	mux.HandleFunc("POST /api/correct", g.handleCorrect)
	mux.HandleFunc("GET /api/preferences/{user}", g.handleGetPreferences)
	mux.HandleFunc("PUT /api/preferences/{user}", g.handlePutPreferences)
	mux.HandleFunc("GET /api/dictations/{user}", g.handleListDictations)
	mux.HandleFunc("POST /api/analyze", g.handleAnalyze)
}

// HandleVoiceWS upgrades the request to a voice session for ?user=.
func (g *Gateway) HandleVoiceWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "user is required", http.StatusBadRequest)
		return
	}

	prefs, err := g.store.GetPreferences(r.Context(), userID)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load preferences")
		http.Error(w, "failed to load preferences", http.StatusInternalServerError)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		g.logger.Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	session := newSession(g, conn, userID, prefs)
	g.track(session)
	defer g.untrack(session)

	session.Run()
}

func (g *Gateway) track(s *Session) {
	g.mu.Lock()
	g.sessions[s.id] = s
	g.wg.Add(1)
	g.mu.Unlock()
}

func (g *Gateway) untrack(s *Session) {
	g.mu.Lock()
	delete(g.sessions, s.id)
	g.mu.Unlock()
	g.wg.Done()
}

// ActiveSessions returns the number of live sessions.
func (g *Gateway) ActiveSessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// Shutdown closes every live session and waits for them to finish or for
// ctx to expire. http.Server.Shutdown does not track hijacked connections.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	for _, s := range g.sessions {
		s.Close()
	}
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
