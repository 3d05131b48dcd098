package app

import (
	"time"

	"github.com/hyperifyio/gamedoc/internal/builder"
)

// Baked fallbacks applied after the flag, environment, and config file layers.
const (
	DefaultModel        = "gpt-4o"
	DefaultArtifactsDir = "artifacts"
	DefaultCacheDir     = ".gamedoc-cache"
	DefaultListenAddr   = ":8080"
)

// Config holds runtime configuration for the application.
type Config struct {
	InputPath  string
	OutputPath string
	GameType   string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Workflow
	MaxRetries     int
	MaxPromptChars int

	// Layout
	TemplateDir  string
	ArtifactsDir string

	// Artifacts
	StudySheet bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Behavior
	Verbose bool

	// Serve mode
	Serve      bool
	ListenAddr string
}

// FillDefaults bakes fallback values into any field still unset after the
// flag, environment, and config file layers have run. Numeric limits keep
// their zero values; the pipeline packages supply those defaults themselves.
func FillDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultModel
	}
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = builder.DefaultTemplateDir
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = DefaultArtifactsDir
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
}
