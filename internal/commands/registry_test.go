package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, r.All())
	return r
}

func TestLoad_CatalogueIsValid(t *testing.T) {
	r := loadRegistry(t)

	for _, c := range r.All() {
		_, err := ParseAction(c.Action)
		assert.NoError(t, err, c.Phrase)
		assert.NotEmpty(t, c.KeyStages, c.Phrase)
	}
	for _, ks := range KeyStages {
		assert.NotEmpty(t, r.ForStage(ks), "no commands for %s", ks)
	}
}

func TestFindCommandByPhrase_ExactForEveryEligibleStage(t *testing.T) {
	r := loadRegistry(t)

	for _, c := range r.All() {
		for _, ks := range c.KeyStages {
			for _, trigger := range c.Triggers() {
				got, ok := r.FindCommandByPhrase(trigger, ks)
				require.True(t, ok, "%q under %s", trigger, ks)
				assert.Equal(t, c.Phrase, got.Phrase, "%q under %s", trigger, ks)
			}
		}
	}
}

func TestFindCommandByPhrase_IneligibleStage(t *testing.T) {
	r := loadRegistry(t)

	for _, c := range r.All() {
		for _, ks := range KeyStages {
			if c.EligibleFor(ks) {
				continue
			}
			for _, trigger := range c.Triggers() {
				got, ok := r.FindCommandByPhrase(trigger, ks)
				if ok {
					assert.NotEqual(t, c.Phrase, got.Phrase, "%q matched under ineligible %s", trigger, ks)
				}
			}
		}
	}

	got, ok := r.FindCommandByPhrase("periodic table", EarlyYears)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestFindCommandByPhrase_Normalises(t *testing.T) {
	r := loadRegistry(t)

	got, ok := r.FindCommandByPhrase("  Go   HOME!  ", KS2)
	require.True(t, ok)
	assert.Equal(t, "navigate:/", got.Action)
}

func TestFindCommandByPhrase_SubstringFallback(t *testing.T) {
	r := loadRegistry(t)

	got, ok := r.FindCommandByPhrase("please open the menu now", KS1)
	require.True(t, ok)
	assert.Equal(t, "ui:open-menu", got.Action)

	got, ok = r.FindCommandByPhrase("calculator", KS3)
	require.True(t, ok)
	assert.Equal(t, "tool:calculator", got.Action)

	_, ok = r.FindCommandByPhrase("", KS3)
	assert.False(t, ok)
	_, ok = r.FindCommandByPhrase("banana split", KS3)
	assert.False(t, ok)
}

func TestSuggestions(t *testing.T) {
	r := loadRegistry(t)

	assert.Empty(t, r.Suggestions("", KS2))
	assert.Empty(t, r.Suggestions("   ", KS2))

	for _, partial := range []string{"o", "e", "open", "MENU", "text", "my"} {
		for _, ks := range KeyStages {
			got := r.Suggestions(partial, ks)
			assert.LessOrEqual(t, len(got), MaxSuggestions)
			for _, c := range got {
				assert.True(t, c.EligibleFor(ks))
				assert.True(t, containsTrigger(c, partial), "%q does not contain %q", c.Phrase, partial)
			}
		}
	}

	assert.Len(t, r.Suggestions("e", KS4), MaxSuggestions)
}

func TestSuggestions_KeepsSurroundingSpaces(t *testing.T) {
	r := loadRegistry(t)

	for _, partial := range []string{"o ", " o", "open ", " the", "my "} {
		for _, ks := range KeyStages {
			for _, c := range r.Suggestions(partial, ks) {
				assert.True(t, containsTrigger(c, partial), "%q does not contain %q", c.Phrase, partial)
			}
		}
	}

	assert.NotEmpty(t, r.Suggestions("open ", KS2))
}

func containsTrigger(c Command, partial string) bool {
	for _, trigger := range c.Triggers() {
		if strings.Contains(strings.ToLower(trigger), strings.ToLower(partial)) {
			return true
		}
	}
	return false
}

func TestParse_RejectsDuplicateTriggerInSharedStage(t *testing.T) {
	data := []byte(`
- phrase: go home
  action: navigate:/
  description: Home
  category: navigation
  key_stages: [ks1, ks2]
- phrase: home time
  action: navigate:/bye
  description: Leave
  category: navigation
  key_stages: [ks2]
  alternatives: [Go Home]
`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"go home" for ks2`)
}

func TestParse_AllowsSameTriggerInDisjointStages(t *testing.T) {
	data := []byte(`
- phrase: play
  action: content:songs
  description: Songs
  category: content
  key_stages: [early-years]
- phrase: play
  action: content:games
  description: Games
  category: content
  key_stages: [ks2]
`)
	r, err := Parse(data)
	require.NoError(t, err)

	got, ok := r.FindCommandByPhrase("play", KS2)
	require.True(t, ok)
	assert.Equal(t, "content:games", got.Action)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing key stages", "- {phrase: a, action: 'ui:x', description: d, category: help, key_stages: []}"},
		{"unknown key stage", "- {phrase: a, action: 'ui:x', description: d, category: help, key_stages: [ks9]}"},
		{"unknown category", "- {phrase: a, action: 'ui:x', description: d, category: games, key_stages: [ks1]}"},
		{"bad action", "- {phrase: a, action: nowhere, description: d, category: help, key_stages: [ks1]}"},
		{"empty phrase", "- {phrase: '', action: 'ui:x', description: d, category: help, key_stages: [ks1]}"},
		{"not yaml", "- [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("navigate:/lessons")
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: "navigate", Target: "/lessons"}, a)
	assert.Equal(t, "navigate:/lessons", a.String())

	_, err = ParseAction("navigate")
	assert.Error(t, err)
	_, err = ParseAction(":x")
	assert.Error(t, err)
}

func TestParseKeyStage(t *testing.T) {
	ks, ok := ParseKeyStage(" KS3 ")
	assert.True(t, ok)
	assert.Equal(t, KS3, ks)

	_, ok = ParseKeyStage("year 7")
	assert.False(t, ok)
}
