package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gamedoc/internal/architect"
	"github.com/hyperifyio/gamedoc/internal/builder"
	"github.com/hyperifyio/gamedoc/internal/cache"
	"github.com/hyperifyio/gamedoc/internal/docload"
	"github.com/hyperifyio/gamedoc/internal/gametype"
	"github.com/hyperifyio/gamedoc/internal/llm"
	"github.com/hyperifyio/gamedoc/internal/refine"
	"github.com/hyperifyio/gamedoc/internal/review"
	"github.com/hyperifyio/gamedoc/internal/summarize"
	"github.com/hyperifyio/gamedoc/internal/workflow"
)

// App owns the assembled pipeline for one process lifetime.
type App struct {
	cfg  Config
	flow *workflow.Controller
}

// New builds the pipeline from config and probes the LLM endpoint once with a
// short timeout. An unreachable endpoint only logs a warning; the first real
// call will surface the failure with proper error context.
func New(ctx context.Context, cfg Config) (*App, error) {
	client := llm.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL)

	var llmCache *cache.LLMCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			// Purge stale entries; ignore errors to avoid failing startup.
			_, _ = cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
		llmCache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	caller := &llm.Caller{Client: client, Model: cfg.LLMModel, Cache: llmCache}

	a := &App{
		cfg: cfg,
		flow: &workflow.Controller{
			Converter:  &docload.Loader{},
			Summarizer: &summarize.Summarizer{Caller: caller, MaxPromptChars: cfg.MaxPromptChars},
			Architect:  &architect.Architect{Caller: caller},
			Reviewer:   &review.Reviewer{Caller: caller},
			Refiner:    &refine.Refiner{Caller: caller},
			Builder:    &builder.Builder{TemplateDir: cfg.TemplateDir},
			MaxRetries: cfg.MaxRetries,
		},
	}

	// Quick connectivity check by listing models. Best-effort: do not fail
	// hard here, so the CLI exit code policy stays driven by the pipeline.
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := client.ListModels(probeCtx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
	} else if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}

	return a, nil
}

// Workflow exposes the assembled controller for the HTTP server.
func (a *App) Workflow() *workflow.Controller { return a.flow }

func (a *App) Close() {
	// nothing yet
}

// Run executes one document-to-game conversion: it drives the workflow, writes
// the game HTML, then the manifest sidecar and optional study sheet. The game
// file is the deliverable; sidecar failures log warnings instead of undoing a
// successful run.
func (a *App) Run(ctx context.Context) error {
	gt, err := gametype.Parse(a.cfg.GameType)
	if err != nil {
		return err
	}

	outcome, err := a.flow.Run(ctx, a.cfg.InputPath, gt)
	if err != nil {
		return err
	}

	outPath := a.cfg.OutputPath
	if outPath == "" {
		outPath = defaultOutputPath(a.cfg.InputPath, gt)
	}
	if err := os.WriteFile(outPath, []byte(outcome.HTML), 0o644); err != nil {
		return fmt.Errorf("write game: %w", err)
	}
	log.Info().Str("path", outPath).Int("bytes", len(outcome.HTML)).Msg("game written")

	var sheetPaths []string
	if a.cfg.StudySheet {
		dir := a.cfg.ArtifactsDir
		if dir == "" {
			dir = "artifacts"
		}
		sheetPaths, err = writeStudySheet(outcome.Summary, dir, slugify(outcome.Summary.Topic))
		if err != nil {
			log.Warn().Err(err).Msg("study sheet generation failed")
			sheetPaths = nil
		} else {
			log.Info().Strs("paths", sheetPaths).Msg("study sheet written")
		}
	}

	m, err := buildManifest(a.cfg, gt, &outcome, outPath, sheetPaths)
	if err != nil {
		log.Warn().Err(err).Msg("manifest assembly failed")
		return nil
	}
	data, err := marshalManifestJSON(m)
	if err != nil {
		log.Warn().Err(err).Msg("manifest encoding failed")
		return nil
	}
	sidecar := manifestSidecarPath(outPath)
	if err := os.WriteFile(sidecar, data, 0o644); err != nil {
		log.Warn().Err(err).Msg("manifest write failed")
		return nil
	}
	log.Info().Str("path", sidecar).Msg("manifest written")
	return nil
}
