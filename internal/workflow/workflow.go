// Package workflow drives the five-stage pipeline: convert and summarize the
// document once, then loop design and review, refining on rejection, until
// approval or the attempt budget runs out, and finally render whichever
// structure the loop settled on.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gamedoc/internal/docload"
	"github.com/hyperifyio/gamedoc/internal/gamespec"
	"github.com/hyperifyio/gamedoc/internal/gametype"
	"github.com/hyperifyio/gamedoc/internal/review"
)

// DefaultMaxRetries bounds combined design and refine attempts per run.
const DefaultMaxRetries = 3

// ErrNoUsableSpec indicates no attempt produced a valid game structure, so
// there is nothing to build.
var ErrNoUsableSpec = errors.New("no usable game structure")

// Converter turns a source document into plain text.
type Converter interface {
	Convert(ctx context.Context, path string) (docload.Document, error)
}

// Summarizer distills the converted document into a structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, doc docload.Document) (gamespec.Summary, error)
}

// Architect produces the first game structure for the requested type.
// A (nil, nil) return means the attempt produced nothing usable.
type Architect interface {
	Design(ctx context.Context, summary gamespec.Summary, gt gametype.Type) (*gamespec.Spec, error)
}

// Reviewer fact-checks a game structure against the summary.
type Reviewer interface {
	Review(ctx context.Context, spec *gamespec.Spec, summary gamespec.Summary) (review.Verdict, error)
}

// Refiner reworks a rejected structure using the reviewer's feedback.
// A (nil, nil) return means the previous structure should be kept.
type Refiner interface {
	Refine(ctx context.Context, spec *gamespec.Spec, feedback string, summary gamespec.Summary) (*gamespec.Spec, error)
}

// Builder renders the final structure into a complete HTML document.
type Builder interface {
	Build(spec *gamespec.Spec) (string, error)
}

// Outcome is the final report of one pipeline run.
type Outcome struct {
	HTML     string
	Spec     *gamespec.Spec
	Summary  gamespec.Summary
	Approved bool
	Attempts int
}

// Controller wires the five stages together. All collaborators are required;
// MaxRetries defaults to DefaultMaxRetries when zero.
type Controller struct {
	Converter  Converter
	Summarizer Summarizer
	Architect  Architect
	Reviewer   Reviewer
	Refiner    Refiner
	Builder    Builder
	MaxRetries int
}

// Run executes the full pipeline for one document and game type.
//
// Conversion or summarization failure aborts the run. Inside the loop, an
// attempt that yields no usable structure is consumed without replacing the
// held one; rejection feeds the reviewer's feedback to the next refinement.
// Approval exits the loop immediately. Exhausting attempts with a held
// structure still builds it (best effort); exhausting them with nothing
// held fails with ErrNoUsableSpec.
func (c *Controller) Run(ctx context.Context, docPath string, gt gametype.Type) (Outcome, error) {
	if err := c.check(); err != nil {
		return Outcome{}, err
	}

	doc, err := c.Converter.Convert(ctx, docPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("convert document: %w", err)
	}
	log.Info().Str("document", doc.Name).Int("chars", len(doc.Text)).Msg("document converted")

	summary, err := c.Summarizer.Summarize(ctx, doc)
	if err != nil {
		return Outcome{}, err
	}
	log.Info().Str("topic", summary.Topic).Str("subject", summary.SubjectArea).Msg("summary ready")

	max := c.maxRetries()
	var (
		spec     *gamespec.Spec
		feedback string
		approved bool
		attempts int
	)
	for attempt := 1; attempt <= max; attempt++ {
		attempts = attempt
		log.Info().Msgf("attempt %d/%d", attempt, max)

		var candidate *gamespec.Spec
		if spec == nil {
			// Nothing to refine yet; this covers the first attempt and any
			// retry after the architect came up empty.
			candidate, err = c.Architect.Design(ctx, summary, gt)
		} else {
			candidate, err = c.Refiner.Refine(ctx, spec, feedback, summary)
		}
		if err != nil {
			return Outcome{}, err
		}
		if candidate != nil {
			spec = candidate
		}
		if spec == nil {
			log.Warn().Msgf("attempt %d produced no usable structure", attempt)
			continue
		}

		verdict, err := c.Reviewer.Review(ctx, spec, summary)
		if err != nil {
			return Outcome{}, err
		}
		if verdict.Approved {
			approved = true
			log.Info().Int("attempt", attempt).Msg("content approved")
			break
		}
		feedback = verdict.Feedback
		log.Warn().Int("attempt", attempt).Str("feedback", feedback).Msg("reviewer rejected structure")
		if attempt == max {
			log.Warn().Msg("max retries reached, proceeding with best version")
		}
	}

	if spec == nil {
		return Outcome{}, fmt.Errorf("%d attempts: %w", attempts, ErrNoUsableSpec)
	}

	html, err := c.Builder.Build(spec)
	if err != nil {
		return Outcome{}, err
	}
	log.Info().Str("game_type", string(spec.GameType)).Str("title", spec.Title).
		Int("items", spec.ItemCount()).Bool("approved", approved).
		Msg("game built")

	return Outcome{HTML: html, Spec: spec, Summary: summary, Approved: approved, Attempts: attempts}, nil
}

func (c *Controller) check() error {
	if c.Converter == nil || c.Summarizer == nil || c.Architect == nil ||
		c.Reviewer == nil || c.Refiner == nil || c.Builder == nil {
		return errors.New("workflow not configured")
	}
	return nil
}

func (c *Controller) maxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return DefaultMaxRetries
}
