package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("LLM_MODEL")
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	}
	if cfg.GameType == "" {
		cfg.GameType = os.Getenv("GAME_TYPE")
	}
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = os.Getenv("TEMPLATES_DIR")
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = os.Getenv("ARTIFACTS_DIR")
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv("CACHE_DIR")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = os.Getenv("LISTEN_ADDR")
	}

	if cfg.MaxRetries == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_RETRIES"))); err == nil && n > 0 {
			cfg.MaxRetries = n
		}
	}
	if cfg.MaxPromptChars == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_PROMPT_CHARS"))); err == nil && n > 0 {
			cfg.MaxPromptChars = n
		}
	}
	if cfg.CacheMaxAge == 0 {
		if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.CacheMaxAge = d
			}
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.StudySheet, "STUDY_SHEET")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.Serve, "SERVE")
}
