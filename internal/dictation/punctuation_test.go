package dictation

import "testing"

func TestApplyPunctuation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"comma and full stop", "hello comma world full stop", "hello, world."},
		{"case insensitive", "Hello COMMA world Full Stop", "Hello, world."},
		{"period", "the end period", "the end."},
		{"question mark", "are you there question mark", "are you there?"},
		{"exclamation", "wow exclamation mark amazing exclamation point", "wow! amazing!"},
		{"colon and semicolon", "note colon one semicolon two", "note: one; two"},
		{"new line", "first line new line second line", "first line\nsecond line"},
		{"new paragraph", "the end new paragraph once upon a time", "the end\n\nonce upon a time"},
		{"brackets", "a cat open bracket a big one close bracket sat", "a cat (a big one) sat"},
		{"hyphen", "well hyphen known", "well-known"},
		{"dash", "wait dash what", "wait - what"},
		{"quotes", "she said quote hello unquote", `she said "hello"`},
		{"whole words only", "commander periodically", "commander periodically"},
		{"no commands", "just some words", "just some words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyPunctuation(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
