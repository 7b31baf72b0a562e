package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_WholeWordsOnly(t *testing.T) {
	table := MustTable(Rule{`dis`, "this"})

	assert.Equal(t, "this is a disaster", table.Apply("dis is a disaster"))
	assert.Equal(t, "discover", table.Apply("discover"))
}

func TestTable_GroupReferencesAndCase(t *testing.T) {
	table := MustTable(Rule{`wabbit(s?)`, "rabbit${1}"})

	assert.Equal(t, "two rabbits", table.Apply("two wabbits"))
	assert.Equal(t, "Rabbit here", table.Apply("Wabbit here"))
	assert.Equal(t, "RABBIT", table.Apply("RABBIT"))
}

func TestTable_EarlierRuleWins(t *testing.T) {
	table := MustTable(
		Rule{`me mam`, "my mum"},
		Rule{`mam`, "mother"},
	)

	assert.Equal(t, "my mum and mother", table.Apply("me mam and mam"))
}

func TestTable_OutputIsNotRescanned(t *testing.T) {
	table := MustTable(
		Rule{`a`, "b"},
		Rule{`b`, "a"},
	)

	assert.Equal(t, "b a", table.Apply("a b"))
}

func TestTable_BadPattern(t *testing.T) {
	_, err := NewTable(Rule{`(unclosed`, "x"})
	require.Error(t, err)
}

func TestTable_Empty(t *testing.T) {
	table := MustTable()
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, "unchanged", table.Apply("unchanged"))
}

func TestChildrenProfileAndNursery(t *testing.T) {
	input := "I see a wabbit and a lellow bwue ball"
	want := "I see a rabbit and a yellow blue ball"

	accent := NewAccentRecognizer(AccentOptions{Profile: "children"})
	assert.Equal(t, want, accent.Apply(input))

	age := NewAgeRecognizer(string(Nursery))
	assert.Equal(t, want, age.Apply(input))
}

func TestSelectProfile_UnknownFallsBackToGeneral(t *testing.T) {
	a := NewAccentRecognizer(AccentOptions{Profile: "klingon"})
	assert.Equal(t, DefaultProfileID, a.Profile().ID)
	assert.Equal(t, "en-GB", a.Language())

	a.SelectProfile("us")
	assert.Equal(t, "en-US", a.Language())
	assert.Equal(t, "my favourite colour", a.Apply("my favorite color"))
}

func TestThresholdGating(t *testing.T) {
	a := NewAccentRecognizer(AccentOptions{Profile: "general", Sensitivity: 75})
	assert.InDelta(t, 0.375, a.Threshold(), 1e-9)

	rejected := a.ProcessRecognitionResult([]Candidate{{Transcript: "gonna go", Confidence: 0.3}})
	assert.True(t, rejected.Empty())

	accepted := a.ProcessRecognitionResult([]Candidate{{Transcript: "gonna go", Confidence: 0.4}})
	require.False(t, accepted.Empty())
	assert.Equal(t, "going to go", accepted.Transcript)
	assert.Equal(t, "gonna go", accepted.Raw)
	assert.InDelta(t, 0.4, accepted.Confidence, 1e-9)
}

func TestSensitivityClamped(t *testing.T) {
	a := NewAccentRecognizer(AccentOptions{Sensitivity: 250})
	assert.InDelta(t, 0.2, a.Threshold(), 1e-9)

	a.SetSensitivity(-10)
	assert.InDelta(t, 0.9, a.Threshold(), 1e-9)
}

func TestAdaptivePicksMostConfident(t *testing.T) {
	a := NewAccentRecognizer(AccentOptions{Profile: "scottish", Adaptive: true})

	res := a.ProcessRecognitionResult([]Candidate{
		{Transcript: "I ken", Confidence: 0.05},
		{Transcript: "aye I dinnae", Confidence: 0.1},
	})
	assert.Equal(t, "yes I don't", res.Transcript)
	assert.InDelta(t, 0.1, res.Confidence, 1e-9)
}

func TestSetAdaptive(t *testing.T) {
	a := NewAccentRecognizer(AccentOptions{Sensitivity: 0})
	candidates := []Candidate{
		{Transcript: "gonna", Confidence: 0.5},
		{Transcript: "wanna", Confidence: 0.6},
	}

	assert.True(t, a.ProcessRecognitionResult(candidates).Empty())

	a.SetAdaptive(true)
	assert.Equal(t, "want to", a.ProcessRecognitionResult(candidates).Transcript)
}

func TestNoCandidates(t *testing.T) {
	assert.True(t, NewAccentRecognizer(AccentOptions{}).ProcessRecognitionResult(nil).Empty())
	assert.True(t, NewAgeRecognizer("adult").ProcessRecognitionResult(nil).Empty())
}

var idempotenceCorpus = []string{
	"I see a wabbit and a lellow bwue ball",
	"gonna find out if dat wee bairn is greetin aboot the hoose",
	"howay man divvent gan yem",
	"me mam says our kid is made up with his scran",
	"summat's reet mardy in the ginnel innit",
	"my favorite color is gray and I realize math is fun",
	"I seen a efalant and we was happy",
	"the hostipal gave me brekfust and pasketti",
	"the dog was really big and very funny",
	"we need to find out why it went up",
	"Aye Ken wiv fank you",
	"i went to the park and i played on the swings and then we had ice cream so it was fun",
}

func TestProfilesArePureAndIdempotent(t *testing.T) {
	for _, id := range ProfileIDs() {
		p, ok := LookupProfile(id)
		require.True(t, ok, id)

		for _, in := range idempotenceCorpus {
			once := p.Table.Apply(in)
			assert.Equal(t, once, p.Table.Apply(in), "%s: pure %q", id, in)
			assert.Equal(t, once, p.Table.Apply(once), "%s: idempotent %q", id, in)
		}
	}
}

func TestAgeGroupsAreIdempotent(t *testing.T) {
	for _, g := range AgeGroups {
		r := NewAgeRecognizer(string(g))
		for _, in := range idempotenceCorpus {
			once := r.Apply(in)
			assert.Equal(t, once, r.Apply(once), "%s: %q", g, in)
		}
	}
}

func TestAgeGroups(t *testing.T) {
	tests := []struct {
		group AgeGroup
		in    string
		want  string
	}{
		{
			Nursery,
			"i went to the park and i played on the swings and then we had ice cream",
			"I went to the park. I played on the swings. Then we had ice cream.",
		},
		{
			Nursery,
			"one two three four five six seven eight nine ten. ,",
			"One two three four five six seven eight nine ten.",
		},
		{Nursery, "one two three four five six seven eight nine ten ;", "One two three four five six seven eight nine ten."},
		{EarlyPrimary, "I seen a efalant and we was happy", "I saw an elephant and we were happy"},
		{EarlyPrimary, "he goed to the twain", "he went to the train"},
		{LatePrimary, "the dog was really big and very funny", "the dog was enormous and hilarious"},
		{Secondary, "we need to find out why it went up", "we need to discover why it increased"},
		{Secondary, "it was very cold", "it was freezing"},
		{Adult, "I seen a wabbit", "I seen a wabbit"},
	}

	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			r := NewAgeRecognizer(string(tt.group))
			assert.Equal(t, tt.want, r.Apply(tt.in))
		})
	}
}

func TestSplitSentences_ShortInputUntouched(t *testing.T) {
	in := "we played and then we went home"
	assert.Equal(t, in, splitSentences(in))
}

func TestSelectAgeGroup_UnknownIsAdult(t *testing.T) {
	r := NewAgeRecognizer("toddler")
	assert.Equal(t, Adult, r.AgeGroup())
	assert.Equal(t, "en-GB", r.Language())

	assert.Equal(t, LatePrimary, r.SelectAgeGroup("late-primary"))
}

func TestAgeRecognizer_PicksMostConfident(t *testing.T) {
	r := NewAgeRecognizer(string(EarlyPrimary))

	res := r.ProcessRecognitionResult([]Candidate{
		{Transcript: "a apple", Confidence: 0.2},
		{Transcript: "I seen it", Confidence: 0.6},
	})
	assert.Equal(t, "I saw it", res.Transcript)
	assert.Equal(t, "I seen it", res.Raw)
}
