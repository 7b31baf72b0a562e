package recognition

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// klog, pulled in by the Deepgram SDK, starts a flush goroutine at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("k8s.io/klog/v2.(*flushDaemon).run.func1"))
}

type fakeEngine struct {
	startErr error
	panicOn  string
	calls    []string
	events   Events
	opts     Options
}

func (f *fakeEngine) Start(opts Options, ev Events) error {
	f.calls = append(f.calls, "start")
	f.events = ev
	f.opts = opts
	if f.panicOn == "start" {
		panic("boom")
	}
	return f.startErr
}

func (f *fakeEngine) Stop() error {
	f.calls = append(f.calls, "stop")
	if f.panicOn == "stop" {
		panic("boom")
	}
	return nil
}

func (f *fakeEngine) Abort() error {
	f.calls = append(f.calls, "abort")
	return nil
}

type fakeCapability struct {
	available bool
	engine    *fakeEngine
}

func (c fakeCapability) Name() string      { return "fake" }
func (c fakeCapability) Available() bool   { return c.available }
func (c fakeCapability) NewEngine() Engine { return c.engine }

func newFake(t *testing.T) (*Recognizer, *fakeEngine, *[]ErrorEvent) {
	t.Helper()
	engine := &fakeEngine{}
	r := New(fakeCapability{available: true, engine: engine}, DefaultOptions(), zerolog.Nop())
	var errs []ErrorEvent
	r.SetOnError(func(ev ErrorEvent) { errs = append(errs, ev) })
	return r, engine, &errs
}

func TestDetect(t *testing.T) {
	engine := &fakeEngine{}
	missing := fakeCapability{available: false}
	present := fakeCapability{available: true, engine: engine}

	assert.Equal(t, "fake", Detect(missing, present).Name())
	assert.Equal(t, Unsupported{}, Detect(missing, nil))
	assert.Equal(t, Unsupported{}, Detect())
}

func TestRecognizer_UnsupportedStartIsNoOp(t *testing.T) {
	r := New(Unsupported{}, DefaultOptions(), zerolog.Nop())
	called := false
	r.SetOnError(func(ErrorEvent) { called = true })

	r.Start()
	r.Stop()
	r.Abort()

	assert.False(t, r.IsSupported())
	assert.False(t, r.IsListening())
	assert.False(t, called)
	assert.Nil(t, r.Engine())
}

func TestRecognizer_StartSetsListening(t *testing.T) {
	r, engine, errs := newFake(t)

	r.Start()
	assert.True(t, r.IsListening())
	assert.Empty(t, *errs)

	r.Start()
	assert.Equal(t, []string{"start"}, engine.calls, "start while listening is a no-op")

	r.Stop()
	assert.False(t, r.IsListening())
	assert.Equal(t, []string{"start", "stop"}, engine.calls)
}

func TestRecognizer_SetLanguageAppliesOnNextStart(t *testing.T) {
	r, engine, _ := newFake(t)

	r.SetLanguage("en-IE")
	r.Start()
	assert.Equal(t, "en-IE", engine.opts.Language)
	assert.Equal(t, DefaultOptions().MaxAlternatives, engine.opts.MaxAlternatives)
}

func TestRecognizer_StartErrorIsReported(t *testing.T) {
	r, engine, errs := newFake(t)
	engine.startErr = errors.New("microphone busy")

	r.Start()

	assert.False(t, r.IsListening())
	require.Len(t, *errs, 1)
	assert.Equal(t, KindStartError, (*errs)[0].Kind)
	assert.Equal(t, "microphone busy", (*errs)[0].Message)
}

func TestRecognizer_EnginePanicIsContained(t *testing.T) {
	r, engine, errs := newFake(t)
	engine.panicOn = "start"

	assert.NotPanics(t, r.Start)
	require.Len(t, *errs, 1)
	assert.Equal(t, KindStartError, (*errs)[0].Kind)

	engine.panicOn = "stop"
	r.Start()
	assert.NotPanics(t, r.Stop)
	require.Len(t, *errs, 2)
	assert.Equal(t, KindRecognitionError, (*errs)[1].Kind)
}

func TestRecognizer_ErrorCodes(t *testing.T) {
	tests := []struct {
		code string
		want ErrorKind
	}{
		{"not-allowed", KindPermissionDenied},
		{"service-not-allowed", KindPermissionDenied},
		{"no-speech", KindRecognitionError},
		{"aborted", KindRecognitionError},
		{"network", KindRecognitionError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			r, engine, errs := newFake(t)
			r.Start()
			engine.events.OnError(tt.code, "engine said no")

			require.Len(t, *errs, 1)
			assert.Equal(t, tt.want, (*errs)[0].Kind)
			assert.Equal(t, tt.code, (*errs)[0].Code)
			assert.False(t, r.IsListening())

			last, ok := r.LastError()
			require.True(t, ok)
			assert.Equal(t, tt.want, last.Kind)
		})
	}
}

func TestRecognizer_ResultsAccumulate(t *testing.T) {
	r, engine, _ := newFake(t)
	var got []Result
	r.SetOnResult(func(res Result) { got = append(got, res) })

	r.Start()
	engine.events.OnResult(Result{Alternatives: []Alternative{{Transcript: "hel", Confidence: 0.2}}})
	engine.events.OnResult(Result{Alternatives: []Alternative{{Transcript: "hello", Confidence: 0.9}}, Final: true})
	engine.events.OnResult(Result{Alternatives: []Alternative{{Transcript: "world", Confidence: 0.8}}, Final: true})
	engine.events.OnResult(Result{})

	assert.Equal(t, "hello world", r.Transcript())
	assert.InDelta(t, 0.8, r.Confidence(), 1e-9)
	assert.Len(t, got, 3)
}

func TestRecognizer_EndReturnsToIdle(t *testing.T) {
	r, engine, _ := newFake(t)
	started, ended := 0, 0
	r.SetOnStart(func() { started++ })
	r.SetOnEnd(func() { ended++ })

	r.Start()
	engine.events.OnStart()
	engine.events.OnEnd()

	assert.Equal(t, 1, started)
	assert.Equal(t, 1, ended)
	assert.False(t, r.IsListening())
}

func TestRelay_CommandsAndEvents(t *testing.T) {
	var sent []RelayCommand
	relay := NewRelay(true, func(cmd RelayCommand) error {
		sent = append(sent, cmd)
		return nil
	})

	r := New(relay, Options{Language: "en-IE", InterimResults: true}, zerolog.Nop())
	require.True(t, r.IsSupported())
	assert.Equal(t, "relay", r.EngineName())

	var results []Result
	var errs []ErrorEvent
	r.SetOnResult(func(res Result) { results = append(results, res) })
	r.SetOnError(func(ev ErrorEvent) { errs = append(errs, ev) })

	r.Start()
	relay.DeliverStart()
	relay.DeliverResult(Result{Alternatives: []Alternative{{Transcript: "go home", Confidence: 0.7}}, Final: true})
	r.Abort()

	want := []RelayCommand{
		{Action: "start", Options: Options{Language: "en-IE", InterimResults: true}},
		{Action: "abort"},
	}
	if diff := cmp.Diff(want, sent); diff != "" {
		t.Errorf("relay commands mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "go home", r.Transcript())
	assert.Len(t, results, 1)

	r.Start()
	relay.DeliverError("not-allowed", "permission denied by user")
	require.Len(t, errs, 1)
	assert.Equal(t, KindPermissionDenied, errs[0].Kind)
	assert.False(t, r.IsListening())
}

func TestRelay_SendFailureIsStartError(t *testing.T) {
	relay := NewRelay(true, func(RelayCommand) error { return errors.New("socket closed") })
	r := New(relay, DefaultOptions(), zerolog.Nop())
	var errs []ErrorEvent
	r.SetOnError(func(ev ErrorEvent) { errs = append(errs, ev) })

	r.Start()

	require.Len(t, errs, 1)
	assert.Equal(t, KindStartError, errs[0].Kind)
}

func TestRelay_UnsupportedClient(t *testing.T) {
	relay := NewRelay(false, func(RelayCommand) error { return nil })
	assert.False(t, relay.Available())
	assert.Equal(t, "unsupported", Detect(relay).Name())
}

func TestDeepgramCapability_RequiresKey(t *testing.T) {
	assert.False(t, NewDeepgramCapability(DeepgramConfig{}, zerolog.Nop()).Available())
	assert.True(t, NewDeepgramCapability(DeepgramConfig{APIKey: "k"}, zerolog.Nop()).Available())
	assert.Equal(t, "relay", Detect(NewDeepgramCapability(DeepgramConfig{}, zerolog.Nop()), NewRelay(true, func(RelayCommand) error { return nil })).Name())
}

func TestDeepgram_SendAudioWhenIdle(t *testing.T) {
	d := NewDeepgram(DeepgramConfig{APIKey: "k", BreakerMaxFailures: 3}, zerolog.Nop())
	require.Error(t, d.SendAudio([]byte{0, 1}))
	require.NoError(t, d.Stop())
}
