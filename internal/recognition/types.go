// Package recognition presents one start/stop/abort interface with event
// callbacks over whichever speech recognition engine is available to a
// session, or a null engine when none is.
package recognition

import "fmt"

// ErrorKind classifies recognition failures surfaced to clients.
type ErrorKind string

const (
	KindUnsupportedBrowser ErrorKind = "unsupported-browser"
	KindPermissionDenied   ErrorKind = "permission-denied"
	KindRecognitionError   ErrorKind = "recognition-error"
	KindStartError         ErrorKind = "start-error"
)

// ErrorEvent is delivered through the OnError callback. Errors never escape
// a Recognizer any other way.
type ErrorEvent struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
}

// Error implements error so events can be returned and wrapped.
func (e ErrorEvent) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindForCode maps an engine error code to the kind reported to clients.
func KindForCode(code string) ErrorKind {
	switch code {
	case "not-allowed", "service-not-allowed":
		return KindPermissionDenied
	default:
		return KindRecognitionError
	}
}

// Alternative is one hypothesis for an utterance.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Result is one recognition event. Engines list alternatives best first.
type Result struct {
	Alternatives []Alternative `json:"alternatives"`
	Final        bool          `json:"final"`
}

// Best returns the engine's preferred alternative.
func (r Result) Best() (Alternative, bool) {
	if len(r.Alternatives) == 0 {
		return Alternative{}, false
	}
	return r.Alternatives[0], true
}

// Options are passed to the engine on Start.
type Options struct {
	Language        string `json:"language"`
	Continuous      bool   `json:"continuous"`
	InterimResults  bool   `json:"interim_results"`
	MaxAlternatives int    `json:"max_alternatives"`
}

// DefaultOptions returns continuous British English recognition with interim
// results and up to three alternatives.
func DefaultOptions() Options {
	return Options{
		Language:        "en-GB",
		Continuous:      true,
		InterimResults:  true,
		MaxAlternatives: 3,
	}
}

// Events are the lifecycle callbacks an engine reports through. Any field may
// be nil.
type Events struct {
	OnStart  func()
	OnEnd    func()
	OnError  func(code, message string)
	OnResult func(Result)
}

func (e Events) start() {
	if e.OnStart != nil {
		e.OnStart()
	}
}

func (e Events) end() {
	if e.OnEnd != nil {
		e.OnEnd()
	}
}

func (e Events) failed(code, message string) {
	if e.OnError != nil {
		e.OnError(code, message)
	}
}

func (e Events) result(r Result) {
	if e.OnResult != nil {
		e.OnResult(r)
	}
}

// Engine is a speech recognition backend. Start returns an error when the
// engine refuses to start; later failures are reported through Events.
type Engine interface {
	Start(opts Options, events Events) error
	Stop() error
	Abort() error
}

// AudioSink is implemented by engines that consume raw audio from the client.
type AudioSink interface {
	SendAudio(data []byte) error
}
