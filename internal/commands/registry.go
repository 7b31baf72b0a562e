package commands

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxSuggestions caps the number of suggestions returned.
const MaxSuggestions = 5

//go:embed commands.yaml
var catalogue []byte

var actionPattern = regexp.MustCompile(`^[a-z0-9]+:\S+$`)

// Registry is an immutable, validated command catalogue.
type Registry struct {
	commands []Command
}

// Load parses the built-in catalogue.
func Load() (*Registry, error) {
	return Parse(catalogue)
}

// Parse reads a YAML catalogue.
func Parse(data []byte) (*Registry, error) {
	var cmds []Command
	if err := yaml.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("parse command catalogue: %w", err)
	}
	return New(cmds)
}

// New validates cmds and builds a registry. A trigger may not be shared by
// two commands eligible for the same key stage.
func New(cmds []Command) (*Registry, error) {
	validate := validator.New()
	if err := validate.RegisterValidation("action", func(fl validator.FieldLevel) bool {
		return actionPattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	var errs []error
	seen := make(map[KeyStage]map[string]string)
	for i := range cmds {
		c := &cmds[i]
		if err := validate.Struct(c); err != nil {
			errs = append(errs, fmt.Errorf("command %d %q: %w", i, c.Phrase, err))
			continue
		}
		for _, ks := range c.KeyStages {
			if seen[ks] == nil {
				seen[ks] = make(map[string]string)
			}
			for _, trigger := range c.Triggers() {
				key := Normalize(trigger)
				if owner, dup := seen[ks][key]; dup {
					errs = append(errs, fmt.Errorf("trigger %q for %s used by %q and %q", key, ks, owner, c.Phrase))
					continue
				}
				seen[ks][key] = c.Phrase
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Registry{commands: cmds}, nil
}

// MustLoad is Load for program start-up; it panics on a bad catalogue.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(err)
	}
	return r
}

var trailingPunct = regexp.MustCompile(`[\s.,!?;:]+$`)

// Normalize lower-cases phrase, collapses whitespace and strips trailing
// punctuation.
func Normalize(phrase string) string {
	s := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	return trailingPunct.ReplaceAllString(s, "")
}

// All returns every command in catalogue order.
func (r *Registry) All() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// ForStage returns the commands eligible for stage, in catalogue order.
func (r *Registry) ForStage(stage KeyStage) []Command {
	var out []Command
	for i := range r.commands {
		if r.commands[i].EligibleFor(stage) {
			out = append(out, r.commands[i])
		}
	}
	return out
}

// FindCommandByPhrase resolves a spoken phrase for stage. An exact match on a
// phrase or alternative wins; otherwise the first eligible command whose
// trigger contains, or is contained in, the phrase is returned.
func (r *Registry) FindCommandByPhrase(phrase string, stage KeyStage) (*Command, bool) {
	spoken := Normalize(phrase)
	if spoken == "" {
		return nil, false
	}

	for i := range r.commands {
		c := &r.commands[i]
		if !c.EligibleFor(stage) {
			continue
		}
		for _, trigger := range c.Triggers() {
			if Normalize(trigger) == spoken {
				return c, true
			}
		}
	}

	for i := range r.commands {
		c := &r.commands[i]
		if !c.EligibleFor(stage) {
			continue
		}
		for _, trigger := range c.Triggers() {
			t := Normalize(trigger)
			if strings.Contains(spoken, t) || strings.Contains(t, spoken) {
				return c, true
			}
		}
	}
	return nil, false
}

// Suggestions returns up to MaxSuggestions eligible commands with a trigger
// containing partial, ignoring case.
func (r *Registry) Suggestions(partial string, stage KeyStage) []Command {
	if strings.TrimSpace(partial) == "" {
		return nil
	}
	needle := strings.ToLower(partial)

	var out []Command
	for i := range r.commands {
		c := &r.commands[i]
		if !c.EligibleFor(stage) {
			continue
		}
		for _, trigger := range c.Triggers() {
			if strings.Contains(strings.ToLower(trigger), needle) {
				out = append(out, *c)
				break
			}
		}
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
