package recognition

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Recognizer is the handle a session drives. It owns the per-utterance state
// (listening flag, accumulated transcript, confidence, last error) and turns
// engine events into callbacks. Its methods never return or panic with engine
// failures; those arrive through OnError.
type Recognizer struct {
	capability Capability
	engine     Engine
	opts       Options
	logger     zerolog.Logger

	mu         sync.Mutex
	listening  bool
	transcript string
	confidence float64
	lastErr    *ErrorEvent

	onStart  func()
	onEnd    func()
	onError  func(ErrorEvent)
	onResult func(Result)
}

// New creates a recognizer backed by c. When c is unavailable the recognizer
// is unsupported and Start only logs a warning.
func New(c Capability, opts Options, logger zerolog.Logger) *Recognizer {
	if c == nil {
		c = Unsupported{}
	}
	r := &Recognizer{
		capability: c,
		opts:       opts,
		logger:     logger.With().Str("engine", c.Name()).Logger(),
	}
	if c.Available() {
		r.engine = c.NewEngine()
	}
	return r
}

// IsSupported reports whether an engine backs this recognizer.
func (r *Recognizer) IsSupported() bool {
	return r.engine != nil
}

// EngineName returns the backing capability's name.
func (r *Recognizer) EngineName() string {
	return r.capability.Name()
}

// Engine returns the backing engine, or nil when unsupported.
func (r *Recognizer) Engine() Engine {
	return r.engine
}

// IsListening reports whether recognition is in progress.
func (r *Recognizer) IsListening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

// Transcript returns the final text accumulated since the last Start.
func (r *Recognizer) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcript
}

// Confidence returns the confidence of the most recent result.
func (r *Recognizer) Confidence() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confidence
}

// LastError returns the most recent error since the last Start, if any.
func (r *Recognizer) LastError() (ErrorEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastErr == nil {
		return ErrorEvent{}, false
	}
	return *r.lastErr, true
}

// SetOnStart sets the callback run when the engine begins listening.
func (r *Recognizer) SetOnStart(fn func()) {
	r.mu.Lock()
	r.onStart = fn
	r.mu.Unlock()
}

// SetOnEnd sets the callback run when listening stops for any reason.
func (r *Recognizer) SetOnEnd(fn func()) {
	r.mu.Lock()
	r.onEnd = fn
	r.mu.Unlock()
}

// SetOnError sets the callback run for each classified engine error.
func (r *Recognizer) SetOnError(fn func(ErrorEvent)) {
	r.mu.Lock()
	r.onError = fn
	r.mu.Unlock()
}

// SetOnResult sets the callback run for interim and final results.
func (r *Recognizer) SetOnResult(fn func(Result)) {
	r.mu.Lock()
	r.onResult = fn
	r.mu.Unlock()
}

// SetLanguage changes the language passed to the engine on the next Start.
func (r *Recognizer) SetLanguage(lang string) {
	r.mu.Lock()
	r.opts.Language = lang
	r.mu.Unlock()
}

// Start begins listening. It is a no-op when unsupported or already
// listening. An engine refusal is reported as a start-error.
func (r *Recognizer) Start() {
	if r.engine == nil {
		r.logger.Warn().Msg("speech recognition not supported, ignoring start")
		return
	}

	r.mu.Lock()
	if r.listening {
		r.mu.Unlock()
		return
	}
	r.listening = true
	r.transcript = ""
	r.confidence = 0
	r.lastErr = nil
	opts := r.opts
	r.mu.Unlock()

	err := guard(func() error { return r.engine.Start(opts, r.events()) })
	if err != nil {
		r.fail(ErrorEvent{Kind: KindStartError, Message: err.Error()})
		return
	}
	r.logger.Debug().Str("language", opts.Language).Msg("recognition started")
}

// Stop asks the engine to finish the current utterance.
func (r *Recognizer) Stop() {
	r.halt("stop", r.engineStop)
}

// Abort stops recognition and discards pending results.
func (r *Recognizer) Abort() {
	r.halt("abort", r.engineAbort)
}

func (r *Recognizer) engineStop() error  { return r.engine.Stop() }
func (r *Recognizer) engineAbort() error { return r.engine.Abort() }

func (r *Recognizer) halt(op string, fn func() error) {
	if r.engine == nil {
		return
	}
	r.mu.Lock()
	if !r.listening {
		r.mu.Unlock()
		return
	}
	r.listening = false
	r.mu.Unlock()

	if err := guard(fn); err != nil {
		r.fail(ErrorEvent{Kind: KindRecognitionError, Code: op, Message: err.Error()})
	}
}

func (r *Recognizer) events() Events {
	return Events{
		OnStart:  r.handleStart,
		OnEnd:    r.handleEnd,
		OnError:  r.handleError,
		OnResult: r.handleResult,
	}
}

func (r *Recognizer) handleStart() {
	r.mu.Lock()
	r.listening = true
	cb := r.onStart
	r.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (r *Recognizer) handleEnd() {
	r.mu.Lock()
	r.listening = false
	cb := r.onEnd
	r.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (r *Recognizer) handleError(code, message string) {
	r.fail(ErrorEvent{Kind: KindForCode(code), Code: code, Message: message})
}

func (r *Recognizer) handleResult(res Result) {
	best, ok := res.Best()
	if !ok {
		return
	}

	r.mu.Lock()
	r.confidence = best.Confidence
	if res.Final {
		r.transcript = strings.TrimSpace(r.transcript + " " + best.Transcript)
	}
	cb := r.onResult
	r.mu.Unlock()

	if cb != nil {
		cb(res)
	}
}

func (r *Recognizer) fail(ev ErrorEvent) {
	r.mu.Lock()
	r.listening = false
	r.lastErr = &ev
	cb := r.onError
	r.mu.Unlock()

	r.logger.Warn().Str("kind", string(ev.Kind)).Str("code", ev.Code).Msg(ev.Message)
	if cb != nil {
		cb(ev)
	}
}

// guard runs fn, converting a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("engine panic: %v", p)
		}
	}()
	return fn()
}
