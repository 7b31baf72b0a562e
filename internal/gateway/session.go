package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lexiqai/voice-input/internal/audio"
	"github.com/lexiqai/voice-input/internal/commands"
	"github.com/lexiqai/voice-input/internal/correction"
	"github.com/lexiqai/voice-input/internal/dictation"
	"github.com/lexiqai/voice-input/internal/observability"
	"github.com/lexiqai/voice-input/internal/recognition"
	"github.com/lexiqai/voice-input/internal/store"
	"github.com/lexiqai/voice-input/internal/tts"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	outboxSize     = 64
)

type outbound struct {
	messageType int
	data        []byte
}

// Session is one client connection. It owns a recognizer, a corrector, a
// dictation buffer and the user's preferences for its lifetime.
type Session struct {
	id     string
	userID string
	conn   *websocket.Conn
	gw     *Gateway

	ctx     context.Context
	cancel  context.CancelFunc
	logger  zerolog.Logger
	metrics *observability.SessionMetrics
	limiter *rate.Limiter
	buffer  *dictation.Buffer

	mu         sync.Mutex
	prefs      store.Preferences
	mode       string
	corrector  correction.Corrector
	recognizer *recognition.Recognizer
	relay      *recognition.Relay
	autoStop   bool
	endpointer *audio.Endpointer

	out       chan outbound
	done      chan struct{}
	closeOnce sync.Once
	tasks     sync.WaitGroup
}

func newSession(g *Gateway, conn *websocket.Conn, userID string, prefs store.Preferences) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:     id,
		userID: userID,
		conn:   conn,
		gw:     g,
		ctx:    ctx,
		cancel: cancel,
		logger: g.logger.With().
			Str("correlation_id", observability.NewCorrelationID()).
			Str("session_id", id).
			Str("user_id", userID).
			Logger(),
		metrics: observability.NewSessionMetrics(id),
		limiter: rate.NewLimiter(rate.Limit(g.cfg.SessionMessageRate), g.cfg.SessionMessageBurst),
		prefs:   prefs,
		mode:    ModeCommand,
		out:     make(chan outbound, outboxSize),
		done:    make(chan struct{}),
	}
	s.buffer = dictation.NewBuffer(s.saveDictation)
	s.endpointer = audio.NewEndpointer(audio.EndpointConfig{
		Format:          audio.Format{SampleRate: g.cfg.AudioSampleRate},
		EnergyThreshold: g.cfg.SpeechEnergyThreshold,
		TrailingSilence: time.Duration(g.cfg.AutoStopSilenceMs) * time.Millisecond,
	})
	s.configure(ClientMessage{Type: MsgHello})
	return s
}

// Run serves the session until the connection closes.
func (s *Session) Run() {
	s.metrics.RecordSessionStart()
	s.logger.Info().Msg("Voice session started")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop()
	}()

	s.sendState()
	if !s.currentRecognizer().IsSupported() {
		s.sendError(string(recognition.KindUnsupportedBrowser), "", "speech recognition is not available")
	}

	s.readLoop()

	s.currentRecognizer().Abort()
	s.cancel()
	s.tasks.Wait()
	s.Close()
	<-writerDone
	s.conn.Close()

	s.metrics.RecordSessionEnd()
	s.logger.Info().Msg("Voice session ended")
}

// Close stops the session's writer and unblocks its reader.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.SetReadDeadline(time.Now())
	})
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		if !s.limiter.Allow() {
			s.metrics.RecordError(ErrRateLimited, "gateway")
			s.sendError(ErrRateLimited, "", "too many messages")
			continue
		}

		if messageType == websocket.BinaryMessage {
			s.handleAudio(data)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(ErrInvalidMessage, "", "malformed JSON")
			continue
		}
		if err := s.gw.validate.Struct(&msg); err != nil {
			s.sendError(ErrInvalidMessage, msg.Type, err.Error())
			continue
		}
		s.handleMessage(msg)
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(msg.messageType, msg.data); err != nil {
				s.logger.Warn().Err(err).Msg("WebSocket write failed")
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MsgHello:
		s.configure(msg)
		s.sendState()
		if !s.currentRecognizer().IsSupported() {
			s.sendError(string(recognition.KindUnsupportedBrowser), "", "speech recognition is not available")
		}

	case MsgStart:
		r := s.currentRecognizer()
		if !r.IsSupported() {
			s.metrics.RecordRecognitionError(string(recognition.KindUnsupportedBrowser))
			s.sendError(string(recognition.KindUnsupportedBrowser), "", "speech recognition is not available")
			return
		}
		s.mu.Lock()
		s.endpointer.Reset()
		s.mu.Unlock()
		s.metrics.RecordRecognitionStart(r.EngineName())
		r.Start()
		s.sendState()

	case MsgStop:
		s.currentRecognizer().Stop()
		s.sendState()

	case MsgAbort:
		s.currentRecognizer().Abort()
		s.sendState()

	case MsgResult:
		if relay := s.currentRelay(); relay != nil {
			relay.DeliverResult(recognition.Result{Alternatives: msg.Alternatives, Final: msg.Final})
		}

	case MsgEngineStart:
		if relay := s.currentRelay(); relay != nil {
			relay.DeliverStart()
		}

	case MsgEngineEnd:
		if relay := s.currentRelay(); relay != nil {
			relay.DeliverEnd()
		}

	case MsgEngineError:
		if relay := s.currentRelay(); relay != nil {
			relay.DeliverError(msg.Code, msg.Message)
		}

	case MsgEdit:
		s.buffer.SetText(msg.Text, msg.Cursor)
		s.sendDictation()

	case MsgCursor:
		s.buffer.SetCursor(msg.Cursor)
		s.sendDictation()

	case MsgClear:
		s.buffer.Clear()
		s.sendDictation()

	case MsgSave:
		if s.buffer.Len() == 0 {
			s.sendError(ErrInvalidMessage, MsgSave, "nothing to save")
			return
		}
		err := s.buffer.Save(s.ctx)
		s.metrics.RecordDictationSave(err == nil)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to save dictation")
			s.sendError(ErrSaveFailed, "", "could not save dictation")
		}

	default:
		s.sendError(ErrInvalidMessage, msg.Type, "unknown message type")
	}
}

// configure applies a hello message: session mode, correction settings and
// the recognition engine. Preferences fill anything the message omits.
func (s *Session) configure(msg ClientMessage) {
	s.mu.Lock()
	if msg.Mode != "" {
		s.mode = msg.Mode
	}
	if msg.Accent != "" {
		s.prefs.Accent = msg.Accent
	}
	if msg.AgeGroup != "" {
		s.prefs.AgeGroup = msg.AgeGroup
	}
	if msg.KeyStage != "" {
		s.prefs.KeyStage = msg.KeyStage
	}
	if msg.Sensitivity != nil {
		s.prefs.Sensitivity = *msg.Sensitivity
	}
	if msg.Adaptive != nil {
		s.prefs.Adaptive = *msg.Adaptive
	}
	if msg.AutoStop != nil {
		s.autoStop = *msg.AutoStop
	}
	prefs := s.prefs
	previous := s.recognizer
	s.mu.Unlock()

	if previous != nil {
		previous.Abort()
	}

	var corrector correction.Corrector
	if prefs.AgeGroup != "" {
		corrector = correction.NewAgeRecognizer(prefs.AgeGroup)
	} else {
		corrector = correction.NewAccentRecognizer(correction.AccentOptions{
			Profile:     prefs.Accent,
			Adaptive:    prefs.Adaptive,
			Sensitivity: prefs.Sensitivity,
		})
	}

	relay := recognition.NewRelay(msg.SpeechSupported, s.sendEngineCommand)
	capability := recognition.Detect(relay, s.gw.serverEngine)

	opts := recognition.DefaultOptions()
	opts.Language = corrector.Language()
	r := recognition.New(capability, opts, s.logger)
	r.SetOnStart(s.sendState)
	r.SetOnEnd(s.sendState)
	r.SetOnError(s.onRecognitionError)
	r.SetOnResult(s.onResult)

	s.mu.Lock()
	s.corrector = corrector
	s.recognizer = r
	s.relay = nil
	if capability == relay {
		s.relay = relay
	}
	s.mu.Unlock()
}

func (s *Session) currentRecognizer() *recognition.Recognizer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recognizer
}

func (s *Session) currentRelay() *recognition.Relay {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.relay == nil {
		s.logger.Debug().Msg("Relay event without a relay engine, ignoring")
	}
	return s.relay
}

func (s *Session) keyStage() commands.KeyStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ks, ok := commands.ParseKeyStage(s.prefs.KeyStage); ok {
		return ks
	}
	ks, _ := commands.ParseKeyStage(s.gw.cfg.DefaultKeyStage)
	return ks
}

func (s *Session) handleAudio(data []byte) {
	r := s.currentRecognizer()
	sink, ok := r.Engine().(recognition.AudioSink)
	if !ok {
		s.logger.Debug().Int("bytes", len(data)).Msg("Audio received but engine does not take audio, dropping")
		return
	}
	s.metrics.RecordAudioBytes(len(data))
	if err := sink.SendAudio(data); err != nil {
		s.metrics.RecordError("audio", "recognition")
		s.logger.Warn().Err(err).Msg("Failed to forward audio")
		return
	}

	s.mu.Lock()
	ended := s.autoStop && s.endpointer.Feed(data) == audio.EventUtteranceEnded
	s.mu.Unlock()
	if ended && r.IsListening() {
		s.logger.Debug().Msg("Trailing silence, stopping recognition")
		r.Stop()
		s.sendState()
	}
}

func (s *Session) onRecognitionError(ev recognition.ErrorEvent) {
	s.metrics.RecordRecognitionError(string(ev.Kind))
	s.sendError(string(ev.Kind), ev.Code, ev.Message)
	s.sendState()
}

func (s *Session) onResult(res recognition.Result) {
	best, ok := res.Best()
	if !ok {
		return
	}

	s.mu.Lock()
	corrector, mode, prefs := s.corrector, s.mode, s.prefs
	s.mu.Unlock()

	if !res.Final {
		s.metrics.RecordResult(false, "interim")
		s.send(ServerMessage{Type: MsgTranscript, Transcript: &TranscriptPayload{
			Text: best.Transcript, Final: false, Accepted: true, Confidence: best.Confidence,
		}})
		return
	}

	candidates := make([]correction.Candidate, len(res.Alternatives))
	for i, alt := range res.Alternatives {
		candidates[i] = correction.Candidate{Transcript: alt.Transcript, Confidence: alt.Confidence}
	}
	result := corrector.ProcessRecognitionResult(candidates)
	if result.Empty() {
		s.metrics.RecordResult(true, "rejected")
		s.send(ServerMessage{Type: MsgTranscript, Transcript: &TranscriptPayload{
			Raw: best.Transcript, Final: true, Accepted: false, Confidence: best.Confidence,
		}})
		return
	}

	s.metrics.RecordResult(true, "accepted")
	s.send(ServerMessage{Type: MsgTranscript, Transcript: &TranscriptPayload{
		Text: result.Transcript, Raw: result.Raw, Final: true, Accepted: true, Confidence: result.Confidence,
	}})

	switch mode {
	case ModeDictation:
		text, cursor := s.buffer.InsertAtCursor(result.Transcript)
		s.metrics.RecordDictationInsert()
		s.send(ServerMessage{Type: MsgDictation, Dictation: &DictationPayload{Text: text, Cursor: cursor}})
	default:
		if !prefs.VoiceNavigationEnabled {
			return
		}
		s.matchCommand(result.Transcript, prefs.FeedbackEnabled)
	}
}

func (s *Session) matchCommand(heard string, feedback bool) {
	stage := s.keyStage()
	cmd, ok := s.gw.commands.FindCommandByPhrase(heard, stage)
	if !ok {
		s.metrics.RecordCommand("")
		var suggestions []string
		for _, c := range s.gw.commands.Suggestions(heard, stage) {
			suggestions = append(suggestions, c.Phrase)
		}
		s.send(ServerMessage{Type: MsgNoMatch, NoMatch: &NoMatchPayload{Heard: heard, Suggestions: suggestions}})
		return
	}

	action, err := commands.ParseAction(cmd.Action)
	if err != nil {
		s.logger.Error().Err(err).Str("phrase", cmd.Phrase).Msg("Catalogue action is malformed")
		return
	}
	s.metrics.RecordCommand(string(cmd.Category))
	s.logger.Info().Str("phrase", cmd.Phrase).Str("action", cmd.Action).Msg("Voice command matched")
	s.send(ServerMessage{Type: MsgCommand, Command: &CommandPayload{
		Phrase:      cmd.Phrase,
		Action:      action,
		Category:    cmd.Category,
		Description: cmd.Description,
		Heard:       heard,
	}})

	if feedback {
		s.send(ServerMessage{Type: MsgFeedback, Feedback: cmd.Description})
		s.speak(cmd.Description)
	}
}

// speak synthesizes text in the background and sends it as a binary frame.
func (s *Session) speak(text string) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		started := time.Now()
		chunk, err := s.gw.synthesizer.Synthesize(s.ctx, text)
		if errors.Is(err, tts.ErrSilent) {
			return
		}
		s.metrics.RecordTTS(started, err == nil)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Feedback synthesis failed")
			return
		}
		s.enqueue(outbound{messageType: websocket.BinaryMessage, data: chunk.Data})
	}()
}

func (s *Session) saveDictation(ctx context.Context, text string) error {
	d, err := s.gw.store.SaveDictation(ctx, s.userID, text)
	if err != nil {
		return err
	}
	s.send(ServerMessage{Type: MsgSaved, Saved: d})
	return nil
}

func (s *Session) sendEngineCommand(cmd recognition.RelayCommand) error {
	select {
	case <-s.done:
		return errors.New("session closed")
	default:
	}
	s.send(ServerMessage{Type: MsgEngine, Engine: &cmd})
	return nil
}

func (s *Session) sendState() {
	s.mu.Lock()
	r, mode, prefs, corrector := s.recognizer, s.mode, s.prefs, s.corrector
	s.mu.Unlock()

	s.send(ServerMessage{Type: MsgState, State: &StatePayload{
		SessionID: s.id,
		Supported: r.IsSupported(),
		Listening: r.IsListening(),
		Engine:    r.EngineName(),
		Mode:      mode,
		KeyStage:  prefs.KeyStage,
		Language:  corrector.Language(),
	}})
}

func (s *Session) sendDictation() {
	s.send(ServerMessage{Type: MsgDictation, Dictation: &DictationPayload{
		Text: s.buffer.Text(), Cursor: s.buffer.Cursor(),
	}})
}

func (s *Session) sendError(kind, code, message string) {
	s.send(ServerMessage{Type: MsgError, Error: &ErrorPayload{Kind: kind, Code: code, Message: message}})
}

func (s *Session) send(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode message")
		return
	}
	s.enqueue(outbound{messageType: websocket.TextMessage, data: data})
}

func (s *Session) enqueue(msg outbound) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.out <- msg:
	case <-s.done:
	default:
		s.logger.Warn().Msg("Outbound queue full, dropping message")
	}
}
