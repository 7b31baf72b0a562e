package recognition

import (
	"errors"
	"sync"
)

// RelayCommand instructs the client's own engine.
type RelayCommand struct {
	Action string `json:"action"` // start, stop or abort
	Options
}

// Relay drives the speech engine built into the client. Commands go out
// through send; the client's engine events come back through the Deliver
// methods. Relay is both the capability and its engine, one per session.
type Relay struct {
	supported bool
	send      func(RelayCommand) error

	mu     sync.Mutex
	events Events
}

// NewRelay returns a relay for a client that has (or lacks) a native engine.
func NewRelay(supported bool, send func(RelayCommand) error) *Relay {
	return &Relay{supported: supported, send: send}
}

// Name identifies the relay in session state.
func (r *Relay) Name() string { return "relay" }

// Available reports whether the client has a native engine to drive.
func (r *Relay) Available() bool { return r.supported && r.send != nil }

// NewEngine returns the relay itself; a session owns a single engine.
func (r *Relay) NewEngine() Engine { return r }

// Start asks the client to begin listening and routes its events to events.
func (r *Relay) Start(opts Options, events Events) error {
	r.mu.Lock()
	r.events = events
	r.mu.Unlock()
	return r.command("start", opts)
}

// Stop asks the client to finish the current utterance.
func (r *Relay) Stop() error { return r.command("stop", Options{}) }

// Abort asks the client to stop without delivering a final result.
func (r *Relay) Abort() error { return r.command("abort", Options{}) }

func (r *Relay) command(action string, opts Options) error {
	if r.send == nil {
		return errors.New("relay has no client connection")
	}
	return r.send(RelayCommand{Action: action, Options: opts})
}

func (r *Relay) current() Events {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events
}

// DeliverStart reports that the client's engine began listening.
func (r *Relay) DeliverStart() { r.current().start() }

// DeliverEnd reports that the client's engine stopped.
func (r *Relay) DeliverEnd() { r.current().end() }

// DeliverError reports a client engine error code such as "not-allowed".
func (r *Relay) DeliverError(code, message string) { r.current().failed(code, message) }

// DeliverResult reports a recognition result from the client.
func (r *Relay) DeliverResult(res Result) { r.current().result(res) }
