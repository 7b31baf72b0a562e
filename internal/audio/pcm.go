// Package audio inspects the raw PCM frames clients stream to server-side
// recognition engines.
package audio

import (
	"fmt"
	"math"
	"time"
)

// Format describes a 16-bit little-endian mono PCM stream.
type Format struct {
	SampleRate int
}

// Duration returns how much audio n bytes hold.
func (f Format) Duration(n int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(n/2) * time.Second / time.Duration(f.SampleRate)
}

// Samples decodes little-endian 16-bit PCM.
func Samples(pcm []byte) ([]int16, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("PCM data length must be even (16-bit samples), got %d", len(pcm))
	}
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	return samples, nil
}

// RMS returns the root mean square level of samples.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
