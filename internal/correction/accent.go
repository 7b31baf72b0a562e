package correction

import "strings"

// Candidate is one recognition alternative from the engine.
type Candidate struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Result is a corrected transcript. The zero value means nothing was accepted.
type Result struct {
	Transcript string  `json:"transcript"`
	Raw        string  `json:"raw"`
	Confidence float64 `json:"confidence"`
}

// Empty reports whether no candidate was accepted.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Transcript) == ""
}

// Corrector is implemented by both recognizers.
type Corrector interface {
	Apply(transcript string) string
	ProcessRecognitionResult(candidates []Candidate) Result
	Language() string
}

var (
	_ Corrector = (*AccentRecognizer)(nil)
	_ Corrector = (*AgeRecognizer)(nil)
)

// AccentOptions configures an AccentRecognizer.
type AccentOptions struct {
	Profile     string
	Adaptive    bool
	Sensitivity int // 0-100
}

// AccentRecognizer corrects transcripts for a selected accent profile and
// gates candidates by confidence. Not safe for concurrent use.
type AccentRecognizer struct {
	profile     *Profile
	adaptive    bool
	sensitivity int
}

// NewAccentRecognizer creates a recognizer from opts.
func NewAccentRecognizer(opts AccentOptions) *AccentRecognizer {
	a := &AccentRecognizer{adaptive: opts.Adaptive}
	a.SelectProfile(opts.Profile)
	a.SetSensitivity(opts.Sensitivity)
	return a
}

// SelectProfile switches profile. Unknown ids select the general profile.
func (a *AccentRecognizer) SelectProfile(id string) *Profile {
	p, ok := LookupProfile(id)
	if !ok {
		p = profiles[DefaultProfileID]
	}
	a.profile = p
	return p
}

// Profile returns the selected profile.
func (a *AccentRecognizer) Profile() *Profile {
	return a.profile
}

// Language returns the selected profile's language tag.
func (a *AccentRecognizer) Language() string {
	return a.profile.Language
}

// SetAdaptive toggles adaptive candidate selection.
func (a *AccentRecognizer) SetAdaptive(adaptive bool) {
	a.adaptive = adaptive
}

// SetSensitivity sets the 0-100 sensitivity, clamping out-of-range values.
func (a *AccentRecognizer) SetSensitivity(sensitivity int) {
	a.sensitivity = min(max(sensitivity, 0), 100)
}

// Threshold is the minimum confidence accepted in non-adaptive mode. It falls
// linearly from 0.9 at sensitivity 0 to 0.2 at sensitivity 100.
func (a *AccentRecognizer) Threshold() float64 {
	return 0.9 - float64(a.sensitivity)/100*0.7
}

// Apply corrects transcript with the selected profile's table.
func (a *AccentRecognizer) Apply(transcript string) string {
	return a.profile.Table.Apply(transcript)
}

// ProcessRecognitionResult picks a candidate and corrects it. In adaptive
// mode the most confident candidate wins; otherwise only the first candidate
// is considered and it must reach Threshold.
func (a *AccentRecognizer) ProcessRecognitionResult(candidates []Candidate) Result {
	if len(candidates) == 0 {
		return Result{}
	}

	chosen := candidates[0]
	if a.adaptive {
		chosen, _ = highestConfidence(candidates)
	} else if chosen.Confidence < a.Threshold() {
		return Result{}
	}

	return Result{
		Transcript: a.Apply(chosen.Transcript),
		Raw:        chosen.Transcript,
		Confidence: chosen.Confidence,
	}
}

func highestConfidence(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best, true
}
