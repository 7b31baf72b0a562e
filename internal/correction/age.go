package correction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// AgeGroup identifies an age bracket with its own correction behaviour.
type AgeGroup string

const (
	Nursery      AgeGroup = "nursery"       // 3-5, Early Years
	EarlyPrimary AgeGroup = "early-primary" // 5-7, KS1
	LatePrimary  AgeGroup = "late-primary"  // 7-11, KS2
	Secondary    AgeGroup = "secondary"     // 11-16, KS3 and KS4
	Adult        AgeGroup = "adult"
)

// AgeGroups lists every age group from youngest to oldest.
var AgeGroups = []AgeGroup{Nursery, EarlyPrimary, LatePrimary, Secondary, Adult}

// ParseAgeGroup returns the age group named s and whether it is known.
func ParseAgeGroup(s string) (AgeGroup, bool) {
	for _, g := range AgeGroups {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

var pastTense = []Rule{
	{`I seen`, "I saw"},
	{`we was`, "we were"},
	{`they was`, "they were"},
	{`you was`, "you were"},
	{`goed`, "went"},
	{`runned`, "ran"},
	{`eated`, "ate"},
	{`buyed`, "bought"},
	{`catched`, "caught"},
	{`drawed`, "drew"},
	{`falled`, "fell"},
	{`sleeped`, "slept"},
	{`thinked`, "thought"},
	{`bringed`, "brought"},
	{`teached`, "taught"},
	{`maked`, "made"},
	{`writed`, "wrote"},
	{`swimmed`, "swam"},
	{`throwed`, "threw"},
	{`growed`, "grew"},
	{`knowed`, "knew"},
	{`singed`, "sang"},
	{`holded`, "held"},
}

var articles = []Rule{
	{`a (apple|egg|elephant|orange|ant|owl|octopus|igloo|umbrella|insect|animal|astronaut|island|ice cream|iguana|arm|ear|eye|hour)`, "an ${1}"},
}

var primaryVocabulary = []Rule{
	{`(?:very|really) big`, "enormous"},
	{`(?:very|really) small`, "tiny"},
	{`(?:very|really) good`, "excellent"},
	{`(?:very|really) bad`, "terrible"},
	{`(?:very|really) happy`, "delighted"},
	{`(?:very|really) sad`, "miserable"},
	{`(?:very|really) scared`, "terrified"},
	{`(?:very|really) tired`, "exhausted"},
	{`(?:very|really) hungry`, "starving"},
	{`(?:very|really) cold`, "freezing"},
	{`(?:very|really) hot`, "boiling"},
	{`(?:very|really) funny`, "hilarious"},
}

var secondaryVocabulary = []Rule{
	{`find out`, "discover"},
	{`found out`, "discovered"},
	{`look at`, "examine"},
	{`shows that`, "demonstrates that"},
	{`get rid of`, "eliminate"},
	{`went up`, "increased"},
	{`went down`, "decreased"},
	{`think about`, "consider"},
	{`a lot of`, "a great deal of"},
	{`very important`, "crucial"},
	{`very different`, "distinct"},
	{`made up of`, "composed of"},
}

func concat(tables ...[]Rule) []Rule {
	var out []Rule
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

// ageBehaviour is a base table followed by post-processing steps. Each step
// sees the previous step's output.
type ageBehaviour struct {
	table *Table
	post  []func(string) string
}

var (
	childSpeechTable   = MustTable(childSpeech...)
	pastTenseTable     = MustTable(pastTense...)
	articleTable       = MustTable(articles...)
	primaryVocabTable  = MustTable(primaryVocabulary...)
	advancedVocabTable = MustTable(concat(secondaryVocabulary, primaryVocabulary)...)
)

var ageBehaviours = map[AgeGroup]ageBehaviour{
	Nursery:      {table: childSpeechTable, post: []func(string) string{splitSentences}},
	EarlyPrimary: {table: childSpeechTable, post: []func(string) string{pastTenseTable.Apply, articleTable.Apply}},
	LatePrimary:  {table: pastTenseTable, post: []func(string) string{primaryVocabTable.Apply}},
	Secondary:    {post: []func(string) string{advancedVocabTable.Apply}},
	Adult:        {},
}

const (
	splitMinWords     = 10
	splitMinPerClause = 5
)

// splitSentences breaks long run-on utterances, typical of very young
// speakers, into short sentences at "and", "and then", "then" and "so" once
// the current sentence is long enough.
func splitSentences(text string) string {
	words := strings.Fields(text)
	if len(words) < splitMinWords {
		return text
	}

	var sentences [][]string
	var current []string
	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, current)
			current = nil
		}
	}

	for i := 0; i < len(words); i++ {
		word := words[i]
		bare := strings.ToLower(strings.TrimRight(word, ",;"))

		if len(current) >= splitMinPerClause {
			switch bare {
			case "and":
				flush()
				continue
			case "then", "so":
				flush()
			}
		}

		current = append(current, word)
		if strings.ContainsAny(word[len(word)-1:], ".!?") {
			flush()
		}
	}
	flush()

	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		sentence := strings.TrimRight(strings.Join(s, " "), " ,;")
		if sentence == "" {
			continue
		}
		sentence = capitalise(sentence)
		if !strings.ContainsAny(sentence[len(sentence)-1:], ".!?") {
			sentence += "."
		}
		out = append(out, sentence)
	}
	return strings.Join(out, " ")
}

func capitalise(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// AgeRecognizer corrects transcripts for a selected age group. It is
// independent of AccentRecognizer; the two are never chained.
// Not safe for concurrent use.
type AgeRecognizer struct {
	group AgeGroup
}

// NewAgeRecognizer creates a recognizer for group, falling back to Adult.
func NewAgeRecognizer(group string) *AgeRecognizer {
	r := &AgeRecognizer{}
	r.SelectAgeGroup(group)
	return r
}

// SelectAgeGroup switches age group; unknown names select Adult.
func (r *AgeRecognizer) SelectAgeGroup(group string) AgeGroup {
	g, ok := ParseAgeGroup(group)
	if !ok {
		g = Adult
	}
	r.group = g
	return g
}

// AgeGroup returns the selected age group.
func (r *AgeRecognizer) AgeGroup() AgeGroup {
	return r.group
}

// Language returns the engine language tag.
func (r *AgeRecognizer) Language() string {
	return "en-GB"
}

// Apply runs the age group's table and then its post-processing.
func (r *AgeRecognizer) Apply(transcript string) string {
	b := ageBehaviours[r.group]
	out := b.table.Apply(transcript)
	for _, step := range b.post {
		out = step(out)
	}
	return out
}

// ProcessRecognitionResult corrects the highest-confidence candidate.
func (r *AgeRecognizer) ProcessRecognitionResult(candidates []Candidate) Result {
	best, ok := highestConfidence(candidates)
	if !ok {
		return Result{}
	}
	return Result{
		Transcript: r.Apply(best.Transcript),
		Raw:        best.Transcript,
		Confidence: best.Confidence,
	}
}
