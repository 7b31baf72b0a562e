// Package correction rewrites raw speech transcripts using ordered,
// case-insensitive, word-bounded substitution tables selected by accent or by
// age group.
package correction

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule replaces whole-word matches of Pattern with Replacement. Pattern is a
// regular expression fragment; Replacement may reference its groups as ${1}.
type Rule struct {
	Pattern     string
	Replacement string
}

type compiledRule struct {
	Rule
	exact *regexp.Regexp
	group int
}

// Table is an immutable, ordered set of rules.
type Table struct {
	rules    []compiledRule
	combined *regexp.Regexp
}

// NewTable compiles rules into a table. Earlier rules take precedence when
// several rules match at the same position.
func NewTable(rules ...Rule) (*Table, error) {
	t := &Table{rules: make([]compiledRule, 0, len(rules))}
	if len(rules) == 0 {
		return t, nil
	}

	alternatives := make([]string, 0, len(rules))
	group := 1
	for i, r := range rules {
		exact, err := regexp.Compile(`(?i)^(?:` + r.Pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("rule %d %q: %w", i, r.Pattern, err)
		}
		t.rules = append(t.rules, compiledRule{Rule: r, exact: exact, group: group})
		alternatives = append(alternatives, `\b(`+r.Pattern+`)\b`)
		group += 1 + exact.NumSubexp()
	}

	combined, err := regexp.Compile(`(?i)` + strings.Join(alternatives, "|"))
	if err != nil {
		return nil, fmt.Errorf("combine rules: %w", err)
	}
	t.combined = combined
	return t, nil
}

// MustTable is NewTable for static tables; it panics on a bad pattern.
func MustTable(rules ...Rule) *Table {
	t, err := NewTable(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// Apply rewrites transcript in one left-to-right pass. Text produced by a
// replacement is never matched again, so a rule cannot undo or chain onto
// another rule's output.
func (t *Table) Apply(transcript string) string {
	if t == nil || t.combined == nil || transcript == "" {
		return transcript
	}

	matches := t.combined.FindAllStringSubmatchIndex(transcript, -1)
	if len(matches) == 0 {
		return transcript
	}

	var b strings.Builder
	b.Grow(len(transcript))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start == end {
			continue
		}
		rule := t.matchedRule(m)
		if rule == nil {
			continue
		}
		span := transcript[start:end]
		b.WriteString(transcript[last:start])
		b.WriteString(carryCase(span, rule.exact.ReplaceAllString(span, rule.Replacement)))
		last = end
	}
	b.WriteString(transcript[last:])
	return b.String()
}

func (t *Table) matchedRule(m []int) *compiledRule {
	for i := range t.rules {
		g := t.rules[i].group
		if 2*g+1 < len(m) && m[2*g] >= 0 {
			return &t.rules[i]
		}
	}
	return nil
}

// carryCase capitalises the replacement when the matched text started with a
// capital letter.
func carryCase(matched, replacement string) string {
	first, _ := utf8.DecodeRuneInString(matched)
	if !unicode.IsUpper(first) || replacement == "" {
		return replacement
	}
	r, size := utf8.DecodeRuneInString(replacement)
	if unicode.IsUpper(r) {
		return replacement
	}
	return string(unicode.ToUpper(r)) + replacement[size:]
}
