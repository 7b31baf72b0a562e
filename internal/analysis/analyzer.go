// Package analysis defines the pluggable content analysis capability. No
// analyzer ships with the gateway; Unavailable stands in until one is
// configured.
package analysis

import (
	"context"
	"errors"
)

// ErrAnalyzerUnavailable is returned when no analyzer is configured.
var ErrAnalyzerUnavailable = errors.New("content analyzer not available")

// Finding is one observation about a content element.
type Finding struct {
	Element  int         `json:"element"`
	Kind     ElementKind `json:"kind"`
	Severity string      `json:"severity"`
	Message  string      `json:"message"`
}

// Report is an analyzer's verdict on a piece of content.
type Report struct {
	Analyzer string    `json:"analyzer"`
	Score    float64   `json:"score"`
	Findings []Finding `json:"findings,omitempty"`
}

// ContentAnalyzer scores content, for example for accessibility or
// curriculum alignment.
type ContentAnalyzer interface {
	Name() string
	Analyze(ctx context.Context, c Content) (Report, error)
}

// Unavailable is the null analyzer.
type Unavailable struct{}

func (Unavailable) Name() string { return "unavailable" }

func (Unavailable) Analyze(context.Context, Content) (Report, error) {
	return Report{}, ErrAnalyzerUnavailable
}
