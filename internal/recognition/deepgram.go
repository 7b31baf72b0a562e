package recognition

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	websocketv1api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-input/internal/observability"
	"github.com/lexiqai/voice-input/internal/resilience"
)

const deepgramService = "deepgram"

// DeepgramConfig configures the server-side engine.
type DeepgramConfig struct {
	APIKey     string
	Model      string
	Language   string // used when Options.Language is empty
	Encoding   string
	SampleRate int

	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration
	Reconnect           resilience.RetryConfig
}

// DeepgramCapability is available when an API key is configured.
type DeepgramCapability struct {
	cfg    DeepgramConfig
	logger zerolog.Logger
}

// NewDeepgramCapability returns a capability whose engines stream to Deepgram.
func NewDeepgramCapability(cfg DeepgramConfig, logger zerolog.Logger) *DeepgramCapability {
	if cfg.Encoding == "" {
		cfg.Encoding = "linear16"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	return &DeepgramCapability{cfg: cfg, logger: logger}
}

func (c *DeepgramCapability) Name() string      { return deepgramService }
func (c *DeepgramCapability) Available() bool   { return c.cfg.APIKey != "" }
func (c *DeepgramCapability) NewEngine() Engine { return NewDeepgram(c.cfg, c.logger) }

// callbackHandler embeds the SDK's default handler and overrides the
// callbacks the engine cares about.
type callbackHandler struct {
	*websocketv1api.DefaultCallbackHandler
	engine *Deepgram
}

func (h *callbackHandler) Open(*msginterfaces.OpenResponse) error {
	h.engine.handleOpen()
	return nil
}

func (h *callbackHandler) Message(msg *msginterfaces.MessageResponse) error {
	h.engine.handleMessage(msg)
	return nil
}

func (h *callbackHandler) Close(*msginterfaces.CloseResponse) error {
	h.engine.handleDrop("connection closed")
	return nil
}

func (h *callbackHandler) Error(resp *msginterfaces.ErrorResponse) error {
	h.engine.handleDrop(fmt.Sprintf("%+v", resp))
	return nil
}

// Deepgram streams client audio to Deepgram's live transcription API.
// Writes are guarded by a circuit breaker; a dropped connection is retried
// in the background and reported as an error only when reconnection fails.
type Deepgram struct {
	cfg     DeepgramConfig
	logger  zerolog.Logger
	breaker *resilience.CircuitBreaker

	mu           sync.RWMutex
	client       *listenClient.WSCallback
	events       Events
	opts         Options
	active       bool
	reconnecting bool
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewDeepgram creates an idle engine.
func NewDeepgram(cfg DeepgramConfig, logger zerolog.Logger) *Deepgram {
	breaker := resilience.NewCircuitBreaker(deepgramService, cfg.BreakerMaxFailures, cfg.BreakerResetTimeout)
	breaker.OnStateChange(func(name string, state resilience.CircuitState) {
		observability.UpdateCircuitBreakerState(name, int(state))
	})
	return &Deepgram{
		cfg:     cfg,
		logger:  logger.With().Str("component", deepgramService).Logger(),
		breaker: breaker,
	}
}

// Start opens a streaming session.
func (d *Deepgram) Start(opts Options, events Events) error {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return errors.New("deepgram session already active")
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.events = events
	d.opts = opts
	d.mu.Unlock()

	err := d.breaker.Call(d.connect)
	if err != nil {
		observability.IncrementCircuitBreakerFailures(deepgramService)
		d.cancel()
	}
	return err
}

func (d *Deepgram) connect() error {
	d.mu.RLock()
	ctx, opts := d.ctx, d.opts
	d.mu.RUnlock()

	language := opts.Language
	if language == "" {
		language = d.cfg.Language
	}

	tOptions := &interfaces.LiveTranscriptionOptions{
		Model:          d.cfg.Model,
		Language:       language,
		Punctuate:      true,
		InterimResults: opts.InterimResults,
		UtteranceEndMs: "1000",
		VadEvents:      true,
		Encoding:       d.cfg.Encoding,
		Channels:       1,
		SampleRate:     d.cfg.SampleRate,
	}

	callback := &callbackHandler{
		DefaultCallbackHandler: websocketv1api.NewDefaultCallbackHandler(),
		engine:                 d,
	}

	client, err := listenClient.NewWSUsingCallback(ctx, d.cfg.APIKey, nil, tOptions, callback)
	if err != nil {
		return fmt.Errorf("create deepgram client: %w", err)
	}
	if !client.Connect() {
		return resilience.NewRetryableError(errors.New("deepgram connect failed"))
	}

	d.mu.Lock()
	d.client = client
	d.active = true
	d.mu.Unlock()

	d.logger.Info().Str("model", d.cfg.Model).Str("language", language).Msg("deepgram session started")
	return nil
}

func (d *Deepgram) handleOpen() {
	d.mu.RLock()
	ev, reconnecting := d.events, d.reconnecting
	d.mu.RUnlock()

	if !reconnecting {
		ev.start()
	}
}

func (d *Deepgram) handleMessage(msg *msginterfaces.MessageResponse) {
	if msg == nil {
		return
	}

	switch msg.Type {
	case "Results", "Message":
		if len(msg.Channel.Alternatives) == 0 {
			return
		}
		res := Result{Final: msg.IsFinal}
		for _, alt := range msg.Channel.Alternatives {
			if alt.Transcript == "" {
				continue
			}
			res.Alternatives = append(res.Alternatives, Alternative{
				Transcript: alt.Transcript,
				Confidence: alt.Confidence,
			})
		}
		if len(res.Alternatives) == 0 {
			return
		}

		d.mu.RLock()
		ev := d.events
		d.mu.RUnlock()
		ev.result(res)

	default:
		d.logger.Debug().Str("type", msg.Type).Msg("deepgram message ignored")
	}
}

// handleDrop records a failure and reconnects unless the session was stopped.
func (d *Deepgram) handleDrop(reason string) {
	d.mu.Lock()
	if d.ctx == nil || d.ctx.Err() != nil || d.reconnecting {
		d.mu.Unlock()
		return
	}
	d.active = false
	d.reconnecting = true
	d.mu.Unlock()

	d.logger.Warn().Str("reason", reason).Msg("deepgram connection lost")
	d.breaker.Record(false)
	observability.IncrementCircuitBreakerFailures(deepgramService)

	go d.reconnect()
}

func (d *Deepgram) reconnect() {
	d.mu.RLock()
	ctx := d.ctx
	d.mu.RUnlock()

	err := resilience.Retry(ctx, d.cfg.Reconnect, d.logger, nil, func(context.Context) error {
		return d.breaker.Call(d.connect)
	})

	d.mu.Lock()
	d.reconnecting = false
	ev := d.events
	d.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.logger.Error().Err(err).Msg("deepgram reconnect failed")
		ev.failed("network", err.Error())
		return
	}
	d.logger.Info().Msg("deepgram reconnected")
}

// SendAudio forwards an audio chunk to the live session.
func (d *Deepgram) SendAudio(data []byte) error {
	err := d.breaker.Call(func() error {
		d.mu.RLock()
		active, client := d.active, d.client
		d.mu.RUnlock()

		if !active || client == nil {
			return errors.New("deepgram session not active")
		}
		if _, err := client.Write(data); err != nil {
			return fmt.Errorf("send audio to deepgram: %w", err)
		}
		return nil
	})
	if err != nil {
		observability.IncrementCircuitBreakerFailures(deepgramService)
	}
	return err
}

// Stop finishes the session and reports the end of recognition.
func (d *Deepgram) Stop() error {
	d.close()
	return nil
}

// Abort is Stop; audio already sent but not yet transcribed is dropped with
// the connection.
func (d *Deepgram) Abort() error {
	d.close()
	return nil
}

func (d *Deepgram) close() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	live := d.active || d.reconnecting
	client, ev := d.client, d.events
	d.client = nil
	d.active = false
	d.mu.Unlock()

	if !live {
		return
	}
	if client != nil {
		client.Finish()
	}
	d.logger.Info().Msg("deepgram session stopped")
	ev.end()
}
