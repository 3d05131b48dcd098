// Package gamespec holds the typed payloads exchanged between the pipeline
// stages: the document summary and the game specification. Model output is
// decoded from loosely typed maps and validated immediately; anything
// missing required keys or under the minimum item count is rejected rather
// than trusted.
package gamespec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperifyio/gamedoc/internal/gametype"
)

// Summary is the structured digest of the source document produced once by
// the extraction stage and consumed read-only by every later stage.
type Summary struct {
	Topic              string   `json:"topic"`
	SubjectArea        string   `json:"subject_area"`
	KeyConcepts        []string `json:"key_concepts"`
	Facts              []string `json:"facts"`
	LearningObjectives []string `json:"learning_objectives"`
	// FullText carries the whole converted document for downstream factual
	// grounding. Only the extraction prompt sees a bounded prefix.
	FullText string `json:"full_text,omitempty"`
}

// SummaryFromMap decodes the extraction stage's parsed response. Fields are
// pulled leniently: a missing key yields a zero value, and
// learning_objectives accepts either a string or a list.
func SummaryFromMap(m map[string]any) Summary {
	return Summary{
		Topic:              stringField(m, "topic"),
		SubjectArea:        stringField(m, "subject_area"),
		KeyConcepts:        stringListField(m, "key_concepts"),
		Facts:              stringListField(m, "facts"),
		LearningObjectives: stringListField(m, "learning_objectives"),
	}
}

// PromptJSON renders the summary as indented JSON for prompt embedding.
func (s Summary) PromptJSON() string {
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

// Pair is one term/definition entry of a matching game.
type Pair struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Question is one multiple-choice entry of a quiz game.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// Card is one front/back entry of a flashcards game.
type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Spec is the game specification: a tagged union over the three game types.
// Exactly one of Pairs, Questions or Cards is populated, matching GameType.
// Stages replace the whole value; nothing mutates a Spec in place.
type Spec struct {
	GameType   gametype.Type `json:"game_type"`
	Title      string        `json:"title"`
	ThemeColor string        `json:"theme_color"`
	Pairs      []Pair        `json:"pairs,omitempty"`
	Questions  []Question    `json:"questions,omitempty"`
	Cards      []Card        `json:"cards,omitempty"`
}

// Decode converts a parsed model response into a validated Spec. A non-nil
// error means the response is not a usable structure; callers treat that as
// a consumed attempt, never a hard failure.
func Decode(m map[string]any) (*Spec, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("re-encode response: %w", err)
	}
	var s Spec
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode game spec: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalize trims whitespace, drops items with missing halves, and clamps
// quiz answer indexes into the option range.
func (s *Spec) normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.ThemeColor = strings.TrimSpace(s.ThemeColor)

	pairs := s.Pairs[:0]
	for _, p := range s.Pairs {
		p.Term = strings.TrimSpace(p.Term)
		p.Definition = strings.TrimSpace(p.Definition)
		if p.Term == "" || p.Definition == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	s.Pairs = pairs

	questions := s.Questions[:0]
	for _, q := range s.Questions {
		q.Question = strings.TrimSpace(q.Question)
		q.Explanation = strings.TrimSpace(q.Explanation)
		opts := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		q.Options = opts
		if q.Question == "" || len(q.Options) < 2 {
			continue
		}
		if q.Correct < 0 {
			q.Correct = 0
		}
		if q.Correct >= len(q.Options) {
			q.Correct = len(q.Options) - 1
		}
		questions = append(questions, q)
	}
	s.Questions = questions

	cards := s.Cards[:0]
	for _, c := range s.Cards {
		c.Front = strings.TrimSpace(c.Front)
		c.Back = strings.TrimSpace(c.Back)
		if c.Front == "" || c.Back == "" {
			continue
		}
		cards = append(cards, c)
	}
	s.Cards = cards
}

// Validate enforces the per-type contract: known game type, title and theme
// color present, and the type's item list at or above its minimum count.
func (s *Spec) Validate() error {
	if s.GameType == "" {
		return fmt.Errorf("missing game_type")
	}
	typ, err := gametype.Parse(string(s.GameType))
	if err != nil {
		return err
	}
	s.GameType = typ
	if s.Title == "" {
		return fmt.Errorf("missing title")
	}
	if s.ThemeColor == "" {
		return fmt.Errorf("missing theme_color")
	}
	profile := gametype.GetProfile(typ)
	if n := s.ItemCount(); n < profile.MinItems {
		return fmt.Errorf("%s game has %d %s, need at least %d", typ, n, profile.ItemsKey, profile.MinItems)
	}
	return nil
}

// ItemCount returns the length of the item list for the game type.
func (s *Spec) ItemCount() int {
	switch s.GameType {
	case gametype.Quiz:
		return len(s.Questions)
	case gametype.Flashcards:
		return len(s.Cards)
	default:
		return len(s.Pairs)
	}
}

// ItemsJSON serializes the type's item list for template substitution.
// Output is deterministic for identical input.
func (s *Spec) ItemsJSON() (string, error) {
	var v any
	switch s.GameType {
	case gametype.Quiz:
		v = s.Questions
	case gametype.Flashcards:
		v = s.Cards
	default:
		v = s.Pairs
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s items: %w", s.GameType, err)
	}
	return string(b), nil
}

// PromptJSON renders s as indented JSON for prompt embedding.
func (s *Spec) PromptJSON() string {
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func stringListField(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		if v = strings.TrimSpace(v); v != "" {
			return []string{v}
		}
	}
	return nil
}
