// Package commands holds the voice command catalogue and resolves spoken
// phrases to commands eligible for a key stage.
package commands

import (
	"fmt"
	"strings"
)

// Category groups commands for display.
type Category string

const (
	CategoryNavigation    Category = "navigation"
	CategoryContent       Category = "content"
	CategoryInteraction   Category = "interaction"
	CategoryAccessibility Category = "accessibility"
	CategoryTools         Category = "tools"
	CategoryHelp          Category = "help"
	CategorySystem        Category = "system"
)

// KeyStage is a UK school-age band.
type KeyStage string

const (
	EarlyYears KeyStage = "early-years"
	KS1        KeyStage = "ks1"
	KS2        KeyStage = "ks2"
	KS3        KeyStage = "ks3"
	KS4        KeyStage = "ks4"
)

// KeyStages lists every key stage from youngest to oldest.
var KeyStages = []KeyStage{EarlyYears, KS1, KS2, KS3, KS4}

// ParseKeyStage returns the key stage named s and whether it is known.
func ParseKeyStage(s string) (KeyStage, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, ks := range KeyStages {
		if string(ks) == s {
			return ks, true
		}
	}
	return "", false
}

// Command maps spoken triggers to an application action.
type Command struct {
	Phrase       string     `yaml:"phrase" json:"phrase" validate:"required"`
	Action       string     `yaml:"action" json:"action" validate:"required,action"`
	Description  string     `yaml:"description" json:"description" validate:"required"`
	Category     Category   `yaml:"category" json:"category" validate:"required,oneof=navigation content interaction accessibility tools help system"`
	KeyStages    []KeyStage `yaml:"key_stages" json:"key_stages" validate:"min=1,dive,oneof=early-years ks1 ks2 ks3 ks4"`
	Alternatives []string   `yaml:"alternatives,omitempty" json:"alternatives,omitempty" validate:"dive,required"`
}

// EligibleFor reports whether the command applies to stage.
func (c *Command) EligibleFor(stage KeyStage) bool {
	for _, ks := range c.KeyStages {
		if ks == stage {
			return true
		}
	}
	return false
}

// Triggers returns the phrase followed by its alternatives.
func (c *Command) Triggers() []string {
	out := make([]string, 0, 1+len(c.Alternatives))
	out = append(out, c.Phrase)
	return append(out, c.Alternatives...)
}

// Action is a parsed "kind:target" action string.
type Action struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

func (a Action) String() string {
	return a.Kind + ":" + a.Target
}

// ParseAction splits an action string such as "navigate:/lessons".
func ParseAction(action string) (Action, error) {
	kind, target, ok := strings.Cut(action, ":")
	if !ok || kind == "" || target == "" {
		return Action{}, fmt.Errorf("malformed action %q: want kind:target", action)
	}
	return Action{Kind: kind, Target: target}, nil
}
