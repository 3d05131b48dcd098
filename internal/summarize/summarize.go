package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gamedoc/internal/docload"
	"github.com/hyperifyio/gamedoc/internal/gamespec"
	"github.com/hyperifyio/gamedoc/internal/jsonx"
	"github.com/hyperifyio/gamedoc/internal/llm"
)

// DefaultMaxPromptChars bounds how much document text is embedded in the
// analysis prompt. Longer documents are truncated, never rejected.
const DefaultMaxPromptChars = 8000

const temperature = 0.3

const systemMessage = "You are an expert content analyzer."

// ErrEmptySummary indicates the model produced nothing usable for the document.
var ErrEmptySummary = errors.New("empty document summary")

// Summarizer distills a converted document into the structured summary that
// the design and review stages consume.
type Summarizer struct {
	Caller *llm.Caller
	// MaxPromptChars caps the document text embedded in the prompt.
	// Zero means DefaultMaxPromptChars.
	MaxPromptChars int
}

// Summarize asks the model for a structured reading of the document and
// attaches the full converted text so later stages can fact-check against it.
func (s *Summarizer) Summarize(ctx context.Context, doc docload.Document) (gamespec.Summary, error) {
	if s.Caller == nil {
		return gamespec.Summary{}, errors.New("summarizer not configured")
	}
	user := buildUserPrompt(doc, s.maxChars())
	out, err := s.Caller.Complete(ctx, "summarize", systemMessage, user, temperature)
	if err != nil {
		return gamespec.Summary{}, fmt.Errorf("summarize %s: %w", doc.Name, err)
	}
	m := jsonx.ExtractObject(out)
	if len(m) == 0 {
		return gamespec.Summary{}, fmt.Errorf("summarize %s: %w", doc.Name, ErrEmptySummary)
	}
	sum := gamespec.SummaryFromMap(m)
	if sum.Topic == "" && len(sum.KeyConcepts) == 0 && len(sum.Facts) == 0 {
		return gamespec.Summary{}, fmt.Errorf("summarize %s: %w", doc.Name, ErrEmptySummary)
	}
	sum.FullText = doc.Text
	log.Debug().Str("stage", "summarize").Str("topic", sum.Topic).
		Int("concepts", len(sum.KeyConcepts)).Int("facts", len(sum.Facts)).
		Msg("document summarized")
	return sum, nil
}

func (s *Summarizer) maxChars() int {
	if s.MaxPromptChars > 0 {
		return s.MaxPromptChars
	}
	return DefaultMaxPromptChars
}

func buildUserPrompt(doc docload.Document, maxChars int) string {
	text := doc.Text
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	var sb strings.Builder
	sb.WriteString("Given this document content, create a comprehensive summary that captures:\n")
	sb.WriteString("1. Main topic and subject area\n")
	sb.WriteString("2. Key concepts and terminology (at least 10-15 items)\n")
	sb.WriteString("3. Important facts and relationships\n")
	sb.WriteString("4. Learning objectives\n\n")
	if doc.Title != "" {
		sb.WriteString("Document title: ")
		sb.WriteString(doc.Title)
		sb.WriteString("\n")
	}
	sb.WriteString("Document content:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nProvide a structured summary in JSON format with these keys:\n")
	sb.WriteString("- topic: main subject\n")
	sb.WriteString("- subject_area: (e.g., \"biology\", \"history\", \"programming\", \"physics\")\n")
	sb.WriteString("- key_concepts: list of important terms/concepts\n")
	sb.WriteString("- facts: list of key facts or relationships\n")
	sb.WriteString("- learning_objectives: what students should learn\n\n")
	sb.WriteString("Return ONLY valid JSON, no markdown formatting.")
	return sb.String()
}
