package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/gamedoc/internal/builder"
	"github.com/hyperifyio/gamedoc/internal/gametype"
	"github.com/hyperifyio/gamedoc/internal/workflow"
)

// FileConfig represents the single-file configuration schema. Nested sections
// map naturally to the flag names.
type FileConfig struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`
	Game   string `yaml:"game" json:"game"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Max struct {
		Retries     int `yaml:"retries" json:"retries"`
		PromptChars int `yaml:"promptChars" json:"promptChars"`
	} `yaml:"max" json:"max"`

	Templates struct {
		Dir string `yaml:"dir" json:"dir"`
	} `yaml:"templates" json:"templates"`

	Artifacts struct {
		Dir        string `yaml:"dir" json:"dir"`
		StudySheet bool   `yaml:"studySheet" json:"studySheet"`
	} `yaml:"artifacts" json:"artifacts"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Serve struct {
		Enable bool   `yaml:"enable" json:"enable"`
		Listen string `yaml:"listen" json:"listen"`
	} `yaml:"serve" json:"serve"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still carry their baked default. Flags should already
// have been parsed; this lets the file supply defaults without overriding
// anything the user said explicitly.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if cfg.OutputPath == "" && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.GameType == "" && fc.Game != "" {
		cfg.GameType = fc.Game
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if (cfg.LLMModel == "" || cfg.LLMModel == DefaultModel) && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if (cfg.MaxRetries == 0 || cfg.MaxRetries == workflow.DefaultMaxRetries) && fc.Max.Retries > 0 {
		cfg.MaxRetries = fc.Max.Retries
	}
	if cfg.MaxPromptChars == 0 && fc.Max.PromptChars > 0 {
		cfg.MaxPromptChars = fc.Max.PromptChars
	}

	if (cfg.TemplateDir == "" || cfg.TemplateDir == builder.DefaultTemplateDir) && fc.Templates.Dir != "" {
		cfg.TemplateDir = fc.Templates.Dir
	}
	if (cfg.ArtifactsDir == "" || cfg.ArtifactsDir == DefaultArtifactsDir) && fc.Artifacts.Dir != "" {
		cfg.ArtifactsDir = fc.Artifacts.Dir
	}
	if !cfg.StudySheet && fc.Artifacts.StudySheet {
		cfg.StudySheet = true
	}

	if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if !cfg.Serve && fc.Serve.Enable {
		cfg.Serve = true
	}
	if (cfg.ListenAddr == "" || cfg.ListenAddr == DefaultListenAddr) && fc.Serve.Listen != "" {
		cfg.ListenAddr = fc.Serve.Listen
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs schema validation for required settings. Serve mode
// takes its document and game type per request, so only the LLM settings are
// mandatory there.
func ValidateConfig(cfg Config) error {
	if cfg.LLMAPIKey == "" {
		return errors.New("config: llm API key is required (set -llm.key or LLM_API_KEY)")
	}
	if cfg.LLMModel == "" {
		return errors.New("config: llm model is required (set -llm.model or LLM_MODEL)")
	}
	if cfg.MaxRetries < 0 || cfg.MaxPromptChars < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Serve {
		return nil
	}
	if cfg.InputPath == "" {
		return errors.New("config: input path is required")
	}
	if _, err := gametype.Parse(cfg.GameType); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
