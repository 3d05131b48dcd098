package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gamedoc/internal/gamespec"
	"github.com/hyperifyio/gamedoc/internal/jsonx"
	"github.com/hyperifyio/gamedoc/internal/llm"
)

const temperature = 0.2

const systemMessage = "You are a strict educational content reviewer."

// NoFeedback is reported when the model's verdict carries no usable feedback.
const NoFeedback = "No feedback provided"

// Verdict is the reviewer's decision on a proposed game structure.
type Verdict struct {
	Approved bool
	Feedback string
}

// Reviewer fact-checks a game structure against the document summary.
type Reviewer struct {
	Caller *llm.Caller
}

// Review asks the model whether the structure is accurate, complete and
// clear. The verdict fails closed: an unparsable response or a missing
// approved key reads as not approved, so a broken review can never pass
// for a successful one.
func (r *Reviewer) Review(ctx context.Context, spec *gamespec.Spec, summary gamespec.Summary) (Verdict, error) {
	if r.Caller == nil {
		return Verdict{}, errors.New("reviewer not configured")
	}
	if spec == nil {
		return Verdict{}, errors.New("nothing to review")
	}
	user := buildUserPrompt(spec, summary)
	out, err := r.Caller.Complete(ctx, "review", systemMessage, user, temperature)
	if err != nil {
		return Verdict{}, fmt.Errorf("review: %w", err)
	}
	v := verdictFrom(jsonx.ExtractObject(out))
	log.Debug().Str("stage", "review").Bool("approved", v.Approved).Msg("verdict")
	return v, nil
}

func verdictFrom(m map[string]any) Verdict {
	v := Verdict{Feedback: NoFeedback}
	if approved, ok := m["approved"].(bool); ok {
		v.Approved = approved
	}
	if fb, ok := m["feedback"].(string); ok && strings.TrimSpace(fb) != "" {
		v.Feedback = strings.TrimSpace(fb)
	}
	return v
}

func buildUserPrompt(spec *gamespec.Spec, summary gamespec.Summary) string {
	var sb strings.Builder
	sb.WriteString("Original Content Summary:\n")
	sb.WriteString(summary.PromptJSON())
	sb.WriteString("\n\nProposed Game Structure:\n")
	sb.WriteString(spec.PromptJSON())
	sb.WriteString("\n\nReview the game content for:\n")
	sb.WriteString("1. Factual accuracy (do terms/definitions match the source?)\n")
	sb.WriteString("2. Completeness (are key concepts included?)\n")
	sb.WriteString("3. Clarity (are explanations clear and correct?)\n\n")
	sb.WriteString("Respond in JSON format:\n")
	sb.WriteString("{\n  \"approved\": true/false,\n  \"feedback\": \"specific issues found or 'Content approved'\"\n}\n\n")
	sb.WriteString("Be strict but fair. Approve only if content is accurate and educational.\n")
	sb.WriteString("Return ONLY valid JSON.")
	return sb.String()
}
