package gametype

import (
	"fmt"
	"strings"
)

// Type represents the supported game types
type Type string

const (
	// Matching pairs terms with their definitions
	Matching Type = "matching"
	// Quiz asks multiple-choice questions with explanations
	Quiz Type = "quiz"
	// Flashcards presents two-sided front/back cards
	Flashcards Type = "flashcards"
)

// All lists the supported types in their canonical order.
func All() []Type {
	return []Type{Matching, Quiz, Flashcards}
}

// Profile defines the structure and requirements for a specific game type
type Profile struct {
	Type     Type
	Name     string
	ItemsKey string
	MinItems int
	// SchemaBlock is the exact JSON shape the model is instructed to
	// return for this type, including the minimum-count line.
	SchemaBlock string
}

// TemplateFile returns the base name of the on-disk template for the type.
func (t Type) TemplateFile() string {
	return string(t) + "_game.html"
}

// Parse converts free-form user input to a canonical Type value.
func Parse(s string) (Type, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "matching", "match", "matching game", "pairs", "pair matching":
		return Matching, nil
	case "quiz", "quiz game", "questions", "multiple choice", "mcq", "trivia":
		return Quiz, nil
	case "flashcards", "flashcard", "flash cards", "cards", "card deck":
		return Flashcards, nil
	}
	// Map substrings conservatively before giving up
	if strings.Contains(v, "match") {
		return Matching, nil
	}
	if strings.Contains(v, "quiz") || strings.Contains(v, "question") {
		return Quiz, nil
	}
	if strings.Contains(v, "card") {
		return Flashcards, nil
	}
	return "", fmt.Errorf("unknown game type %q (expected one of: matching, quiz, flashcards)", s)
}

// GetProfile returns the profile for the given type.
func GetProfile(t Type) Profile {
	switch t {
	case Quiz:
		return quizProfile()
	case Flashcards:
		return flashcardsProfile()
	default:
		return matchingProfile()
	}
}

func matchingProfile() Profile {
	return Profile{
		Type:     Matching,
		Name:     "Matching Game",
		ItemsKey: "pairs",
		MinItems: 8,
		SchemaBlock: `{
  "game_type": "matching",
  "title": "creative title",
  "theme_color": "CSS color based on subject (e.g., medical=#00bfa5, history=#ff6b35, tech=#667eea)",
  "pairs": [
    {"term": "concept name", "definition": "clear definition"},
    ... (minimum 8 pairs)
  ]
}`,
	}
}

func quizProfile() Profile {
	return Profile{
		Type:     Quiz,
		Name:     "Quiz Game",
		ItemsKey: "questions",
		MinItems: 10,
		SchemaBlock: `{
  "game_type": "quiz",
  "title": "creative title",
  "theme_color": "CSS color based on subject (e.g., medical=#00bfa5, history=#ff6b35, tech=#667eea)",
  "questions": [
    {
      "question": "question text",
      "options": ["A", "B", "C", "D"],
      "correct": 0,
      "explanation": "why this is correct"
    },
    ... (minimum 10 questions)
  ]
}`,
	}
}

func flashcardsProfile() Profile {
	return Profile{
		Type:     Flashcards,
		Name:     "Flashcards",
		ItemsKey: "cards",
		MinItems: 12,
		SchemaBlock: `{
  "game_type": "flashcards",
  "title": "creative title",
  "theme_color": "CSS color based on subject (e.g., medical=#00bfa5, history=#ff6b35, tech=#667eea)",
  "cards": [
    {"front": "term or question", "back": "definition or answer"},
    ... (minimum 12 cards)
  ]
}`,
	}
}
