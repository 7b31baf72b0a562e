package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ElementKind tags a content element.
type ElementKind string

const (
	KindText        ElementKind = "text"
	KindImage       ElementKind = "image"
	KindVideo       ElementKind = "video"
	KindQuestion    ElementKind = "question"
	KindTable       ElementKind = "table"
	KindChart       ElementKind = "chart"
	KindInteractive ElementKind = "interactive"
)

// Element is one block of lesson content. The set of implementations is
// closed; switch over them with a default case that reports an error.
type Element interface {
	Kind() ElementKind
	isElement()
}

type TextElement struct {
	Text string `json:"text"`
}

type ImageElement struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

type VideoElement struct {
	URL        string `json:"url"`
	Captions   bool   `json:"captions"`
	Transcript string `json:"transcript,omitempty"`
}

type QuestionElement struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer,omitempty"`
}

type TableElement struct {
	Caption string     `json:"caption,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type ChartElement struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Values      []float64 `json:"values"`
}

type InteractiveElement struct {
	Name               string `json:"name"`
	Instructions       string `json:"instructions,omitempty"`
	KeyboardAccessible bool   `json:"keyboard_accessible"`
}

func (TextElement) Kind() ElementKind        { return KindText }
func (ImageElement) Kind() ElementKind       { return KindImage }
func (VideoElement) Kind() ElementKind       { return KindVideo }
func (QuestionElement) Kind() ElementKind    { return KindQuestion }
func (TableElement) Kind() ElementKind       { return KindTable }
func (ChartElement) Kind() ElementKind       { return KindChart }
func (InteractiveElement) Kind() ElementKind { return KindInteractive }

func (TextElement) isElement()        {}
func (ImageElement) isElement()       {}
func (VideoElement) isElement()       {}
func (QuestionElement) isElement()    {}
func (TableElement) isElement()       {}
func (ChartElement) isElement()       {}
func (InteractiveElement) isElement() {}

// Content is a piece of lesson content submitted for analysis.
type Content struct {
	Title    string    `json:"title"`
	KeyStage string    `json:"key_stage,omitempty"`
	Elements []Element `json:"-"`
}

type contentJSON struct {
	Title    string            `json:"title"`
	KeyStage string            `json:"key_stage,omitempty"`
	Elements []json.RawMessage `json:"elements"`
}

func (c Content) MarshalJSON() ([]byte, error) {
	out := contentJSON{Title: c.Title, KeyStage: c.KeyStage}
	for i, e := range c.Elements {
		body, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		fields["type"], _ = json.Marshal(e.Kind())
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Elements = append(out.Elements, raw)
	}
	return json.Marshal(out)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var in contentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	elements := make([]Element, 0, len(in.Elements))
	for i, raw := range in.Elements {
		e, err := decodeElement(raw)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		elements = append(elements, e)
	}

	*c = Content{Title: in.Title, KeyStage: in.KeyStage, Elements: elements}
	return nil
}

func decodeElement(raw json.RawMessage) (Element, error) {
	var head struct {
		Type ElementKind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	var e Element
	var err error
	switch head.Type {
	case KindText:
		e, err = decodeAs[TextElement](raw)
	case KindImage:
		e, err = decodeAs[ImageElement](raw)
	case KindVideo:
		e, err = decodeAs[VideoElement](raw)
	case KindQuestion:
		e, err = decodeAs[QuestionElement](raw)
	case KindTable:
		e, err = decodeAs[TableElement](raw)
	case KindChart:
		e, err = decodeAs[ChartElement](raw)
	case KindInteractive:
		e, err = decodeAs[InteractiveElement](raw)
	case "":
		return nil, errors.New("missing element type")
	default:
		return nil, fmt.Errorf("unknown element type %q", head.Type)
	}
	return e, err
}

func decodeAs[T Element](raw json.RawMessage) (Element, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks that each element carries the fields its kind requires.
func (c Content) Validate() error {
	var errs []error
	for i, e := range c.Elements {
		if err := validateElement(e); err != nil {
			errs = append(errs, fmt.Errorf("element %d (%s): %w", i, e.Kind(), err))
		}
	}
	return errors.Join(errs...)
}

func validateElement(e Element) error {
	switch v := e.(type) {
	case TextElement:
		if v.Text == "" {
			return errors.New("text is required")
		}
	case ImageElement:
		if v.URL == "" {
			return errors.New("url is required")
		}
	case VideoElement:
		if v.URL == "" {
			return errors.New("url is required")
		}
	case QuestionElement:
		if v.Prompt == "" {
			return errors.New("prompt is required")
		}
	case TableElement:
		for r, row := range v.Rows {
			if len(row) != len(v.Headers) {
				return fmt.Errorf("row %d has %d cells, want %d", r, len(row), len(v.Headers))
			}
		}
	case ChartElement:
		if v.Title == "" {
			return errors.New("title is required")
		}
	case InteractiveElement:
		if v.Name == "" {
			return errors.New("name is required")
		}
	default:
		return fmt.Errorf("unsupported element %T", e)
	}
	return nil
}

// CountByKind tallies elements per kind.
func (c Content) CountByKind() map[ElementKind]int {
	counts := make(map[ElementKind]int)
	for _, e := range c.Elements {
		counts[e.Kind()]++
	}
	return counts
}
