// Package tts speaks command feedback back to the client.
package tts

import (
	"context"
	"errors"
)

// ErrSilent is returned by Silent; callers treat it as "no audio".
var ErrSilent = errors.New("tts: speech synthesis not configured")

// AudioChunk is synthesized speech ready to send to the client.
type AudioChunk struct {
	Data       []byte // raw little-endian 16-bit PCM
	SampleRate int
	Channels   int
}

// Synthesizer turns text into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*AudioChunk, error)
	Name() string
}

// Silent is the synthesizer used when no speech service is configured.
type Silent struct{}

func (Silent) Synthesize(context.Context, string) (*AudioChunk, error) { return nil, ErrSilent }
func (Silent) Name() string                                            { return "silent" }
