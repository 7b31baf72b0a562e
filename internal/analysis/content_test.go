package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lessonJSON = `{
	"title": "Minibeasts",
	"key_stage": "ks1",
	"elements": [
		{"type": "text", "text": "Spiders have eight legs."},
		{"type": "image", "url": "/img/spider.png", "alt_text": "A garden spider"},
		{"type": "question", "prompt": "How many legs?", "options": ["six", "eight"], "answer": "eight"},
		{"type": "table", "headers": ["animal", "legs"], "rows": [["ant", "6"], ["spider", "8"]]}
	]
}`

func TestContent_DecodeTaggedElements(t *testing.T) {
	var c Content
	require.NoError(t, json.Unmarshal([]byte(lessonJSON), &c))

	want := []Element{
		TextElement{Text: "Spiders have eight legs."},
		ImageElement{URL: "/img/spider.png", AltText: "A garden spider"},
		QuestionElement{Prompt: "How many legs?", Options: []string{"six", "eight"}, Answer: "eight"},
		TableElement{Headers: []string{"animal", "legs"}, Rows: [][]string{{"ant", "6"}, {"spider", "8"}}},
	}
	if diff := cmp.Diff(want, c.Elements); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, c.Validate())
	assert.Equal(t, map[ElementKind]int{KindText: 1, KindImage: 1, KindQuestion: 1, KindTable: 1}, c.CountByKind())
}

func TestContent_EncodeKeepsTypeTag(t *testing.T) {
	c := Content{Title: "Charts", Elements: []Element{ChartElement{Title: "Rainfall", Values: []float64{1, 2}}}}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var back Content
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(c, back); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestContent_RejectsUnknownType(t *testing.T) {
	var c Content
	err := json.Unmarshal([]byte(`{"title":"x","elements":[{"type":"hologram"}]}`), &c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hologram")

	err = json.Unmarshal([]byte(`{"title":"x","elements":[{"text":"untagged"}]}`), &c)
	assert.Error(t, err)
}

func TestContent_Validate(t *testing.T) {
	c := Content{Elements: []Element{
		TextElement{},
		TableElement{Headers: []string{"a", "b"}, Rows: [][]string{{"only one"}}},
		InteractiveElement{Name: "drag and drop"},
	}}

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 0 (text)")
	assert.Contains(t, err.Error(), "element 1 (table)")
	assert.NotContains(t, err.Error(), "element 2")
}

func TestUnavailable(t *testing.T) {
	var a ContentAnalyzer = Unavailable{}
	_, err := a.Analyze(context.Background(), Content{})
	assert.ErrorIs(t, err, ErrAnalyzerUnavailable)
}
