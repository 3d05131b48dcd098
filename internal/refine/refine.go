package refine

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

const temperature = 0.5

const systemMessage = "You are a game content refiner."

// Refiner reworks a rejected game structure using the reviewer's feedback.
type Refiner struct {
	Caller *llm.Caller
}

// Refine asks the model to fix the reviewer's issues while keeping the same
// JSON shape. An unusable reply, including one that switches game type,
// returns (nil, nil) so the caller keeps the previous structure and spends
// the attempt; errors are reserved for transport failures.
func (r *Refiner) Refine(ctx context.Context, spec *gamespec.Spec, feedback string, summary gamespec.Summary) (*gamespec.Spec, error) {
	if r.Caller == nil {
		return nil, errors.New("refiner not configured")
	}
	if spec == nil {
		return nil, errors.New("nothing to refine")
	}
	user := buildUserPrompt(spec, feedback, summary)
	out, err := r.Caller.Complete(ctx, "refine", systemMessage, user, temperature)
	if err != nil {
		return nil, fmt.Errorf("refine: %w", err)
	}
	refined, err := gamespec.Decode(jsonx.ExtractObject(out))
	if err != nil {
		log.Warn().Err(err).Str("stage", "refine").Msg("unusable refinement, keeping previous structure")
		return nil, nil
	}
	if refined.GameType != spec.GameType {
		log.Warn().Str("stage", "refine").
			Str("want", string(spec.GameType)).Str("got", string(refined.GameType)).
			Msg("refinement switched game type, keeping previous structure")
		return nil, nil
	}
	return refined, nil
}

func buildUserPrompt(spec *gamespec.Spec, feedback string, summary gamespec.Summary) string {
	var sb strings.Builder
	sb.WriteString("Original Summary:\n")
	sb.WriteString(summary.PromptJSON())
	sb.WriteString("\n\nCurrent Game Structure:\n")
	sb.WriteString(spec.PromptJSON())
	sb.WriteString("\n\nReviewer Feedback:\n")
	sb.WriteString(feedback)
	sb.WriteString("\n\nFix the issues mentioned in the feedback while maintaining the same JSON structure.\n")
	sb.WriteString("Ensure all content is factually accurate and educationally sound.\n")
	sb.WriteString("Return ONLY the corrected JSON in the same format.")
	return sb.String()
}
