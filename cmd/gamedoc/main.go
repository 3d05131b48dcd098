package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gamedoc/internal/app"
	"github.com/hyperifyio/gamedoc/internal/builder"
	"github.com/hyperifyio/gamedoc/internal/docload"
	"github.com/hyperifyio/gamedoc/internal/server"
	"github.com/hyperifyio/gamedoc/internal/summarize"
	"github.com/hyperifyio/gamedoc/internal/workflow"
)

// Exit codes, so scripts can tell what went wrong.
const (
	exitUsage       = 2
	exitMissingFile = 3
	exitBadDocument = 4
	exitNoTemplate  = 5
	exitNoSpec      = 6
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Optional .env in the working directory; absence is fine.
	_ = godotenv.Load()

	var (
		cfg        app.Config
		configPath string
	)
	flag.StringVar(&cfg.InputPath, "input", "", "Path to the source document (pdf, md, html or txt)")
	flag.StringVar(&cfg.OutputPath, "output", "", "Path for the generated game (default game_<type>_<name>.html)")
	flag.StringVar(&cfg.GameType, "game", "", "Game type: matching, quiz or flashcards (env GAME_TYPE)")
	flag.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL (env LLM_BASE_URL)")
	flag.StringVar(&cfg.LLMModel, "llm.model", "", "Model name (env LLM_MODEL, default "+app.DefaultModel+")")
	flag.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server (env LLM_API_KEY)")
	flag.IntVar(&cfg.MaxRetries, "max.retries", 0, fmt.Sprintf("Combined design and refine attempts per run (env MAX_RETRIES, default %d)", workflow.DefaultMaxRetries))
	flag.IntVar(&cfg.MaxPromptChars, "max.promptChars", 0, fmt.Sprintf("Document characters embedded in the analysis prompt (env MAX_PROMPT_CHARS, default %d)", summarize.DefaultMaxPromptChars))
	flag.StringVar(&cfg.TemplateDir, "templates.dir", "", "Directory holding the game templates (env TEMPLATES_DIR, default "+builder.DefaultTemplateDir+")")
	flag.StringVar(&cfg.ArtifactsDir, "artifacts.dir", "", "Directory for study sheet artifacts (env ARTIFACTS_DIR, default "+app.DefaultArtifactsDir+")")
	flag.BoolVar(&cfg.StudySheet, "study-sheet", false, "Also write a study sheet from the document summary (env STUDY_SHEET)")
	flag.StringVar(&cfg.CacheDir, "cache.dir", "", "LLM response cache directory (env CACHE_DIR, default "+app.DefaultCacheDir+")")
	flag.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables (env CACHE_MAX_AGE)")
	flag.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear cache directory before run (env CACHE_CLEAR)")
	flag.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files) (env CACHE_STRICT_PERMS)")
	flag.StringVar(&configPath, "config", "", "Optional YAML or JSON config file filling unset settings")
	flag.BoolVar(&cfg.Serve, "serve", false, "Run the HTTP server instead of a one-shot conversion (env SERVE)")
	flag.StringVar(&cfg.ListenAddr, "listen", "", "HTTP listen address in serve mode (env LISTEN_ADDR, default "+app.DefaultListenAddr+")")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging (env VERBOSE)")
	flag.Parse()

	// Precedence: explicit flags, then environment, then config file, then
	// baked defaults.
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file unreadable")
			os.Exit(exitUsage)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.FillDefaults(&cfg)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(exitUsage)
	}

	if cfg.Serve {
		if err := serve(cfg); err != nil {
			log.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}

func serve(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	srv, err := server.New(a.Workflow())
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cfg.ListenAddr)
}

// exitCode maps run failures onto distinct codes: 3 for a missing input file,
// 4 for a document the pipeline cannot use, 5 for a missing game template,
// 6 when no attempt produced a usable game structure, 1 for anything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return exitMissingFile
	case errors.Is(err, docload.ErrUnsupportedFormat),
		errors.Is(err, docload.ErrNoText),
		errors.Is(err, summarize.ErrEmptySummary):
		return exitBadDocument
	case errors.Is(err, builder.ErrTemplateNotFound):
		return exitNoTemplate
	case errors.Is(err, workflow.ErrNoUsableSpec):
		return exitNoSpec
	default:
		return 1
	}
}
