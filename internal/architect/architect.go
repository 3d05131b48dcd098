package architect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gamedoc/internal/gamespec"
	"github.com/hyperifyio/gamedoc/internal/gametype"
	"github.com/hyperifyio/gamedoc/internal/jsonx"
	"github.com/hyperifyio/gamedoc/internal/llm"
)

const temperature = 0.7

const systemMessage = "You are a game design architect specializing in educational games."

// Architect drafts the first game structure from a document summary.
type Architect struct {
	Caller *llm.Caller
}

// Design asks the model for a game structure of the requested type. A
// response that does not decode into a valid structure of that type is
// logged and reported as (nil, nil) so the caller spends the attempt and
// moves on; errors are reserved for transport failures.
func (a *Architect) Design(ctx context.Context, summary gamespec.Summary, gt gametype.Type) (*gamespec.Spec, error) {
	if a.Caller == nil {
		return nil, errors.New("architect not configured")
	}
	user := buildUserPrompt(summary, gt)
	out, err := a.Caller.Complete(ctx, "architect", systemMessage, user, temperature)
	if err != nil {
		return nil, fmt.Errorf("architect: %w", err)
	}
	spec, err := gamespec.Decode(jsonx.ExtractObject(out))
	if err != nil {
		log.Warn().Err(err).Str("stage", "architect").Msg("unusable game structure")
		return nil, nil
	}
	if spec.GameType != gt {
		log.Warn().Str("stage", "architect").
			Str("requested", string(gt)).Str("got", string(spec.GameType)).
			Msg("model returned wrong game type")
		return nil, nil
	}
	return spec, nil
}

func buildUserPrompt(summary gamespec.Summary, gt gametype.Type) string {
	profile := gametype.GetProfile(gt)
	var sb strings.Builder
	sb.WriteString("Content Summary:\n")
	sb.WriteString(summary.PromptJSON())
	sb.WriteString("\n\nDesign a ")
	sb.WriteString(string(gt))
	sb.WriteString(" game with the following structure:\n\n")
	sb.WriteString(profile.SchemaBlock)
	sb.WriteString("\n\nUse content from the summary. Make it educational and engaging.\n")
	sb.WriteString("Return ONLY valid JSON.")
	return sb.String()
}
