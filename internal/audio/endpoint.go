package audio

import "time"

// EndpointConfig configures an Endpointer.
type EndpointConfig struct {
	Format          Format
	EnergyThreshold float64       // RMS level above which a frame counts as speech
	TrailingSilence time.Duration // silence after speech that ends an utterance
}

// DefaultEndpointConfig suits 16 kHz microphone audio.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		Format:          Format{SampleRate: 16000},
		EnergyThreshold: 500,
		TrailingSilence: 1500 * time.Millisecond,
	}
}

// Event is what a frame changed.
type Event int

const (
	EventNone Event = iota
	EventSpeechStarted
	EventUtteranceEnded
)

// Endpointer finds the end of an utterance in a PCM stream: speech followed
// by TrailingSilence of quiet audio. Not safe for concurrent use.
type Endpointer struct {
	cfg      EndpointConfig
	speaking bool
	silence  time.Duration
}

// NewEndpointer creates an endpointer; zero fields in cfg take defaults.
func NewEndpointer(cfg EndpointConfig) *Endpointer {
	def := DefaultEndpointConfig()
	if cfg.Format.SampleRate <= 0 {
		cfg.Format = def.Format
	}
	if cfg.EnergyThreshold <= 0 {
		cfg.EnergyThreshold = def.EnergyThreshold
	}
	if cfg.TrailingSilence <= 0 {
		cfg.TrailingSilence = def.TrailingSilence
	}
	return &Endpointer{cfg: cfg}
}

// Feed processes one frame of PCM. Malformed frames are ignored.
func (e *Endpointer) Feed(pcm []byte) Event {
	samples, err := Samples(pcm)
	if err != nil || len(samples) == 0 {
		return EventNone
	}

	if RMS(samples) > e.cfg.EnergyThreshold {
		e.silence = 0
		if !e.speaking {
			e.speaking = true
			return EventSpeechStarted
		}
		return EventNone
	}

	if !e.speaking {
		return EventNone
	}
	e.silence += e.cfg.Format.Duration(len(pcm))
	if e.silence >= e.cfg.TrailingSilence {
		e.Reset()
		return EventUtteranceEnded
	}
	return EventNone
}

// Speaking reports whether the last frames contained speech.
func (e *Endpointer) Speaking() bool {
	return e.speaking
}

// Reset forgets any speech in progress.
func (e *Endpointer) Reset() {
	e.speaking = false
	e.silence = 0
}
