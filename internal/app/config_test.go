package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/gamedoc/internal/workflow"
)

func validBase() Config {
	return Config{
		InputPath: "notes.md",
		GameType:  "quiz",
		LLMModel:  "gpt-4o",
		LLMAPIKey: "sk-test",
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	t.Parallel()
	if err := ValidateConfig(validBase()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConfig_MissingAPIKeyNamesTheFlag(t *testing.T) {
	t.Parallel()
	cfg := validBase()
	cfg.LLMAPIKey = ""
	err := ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "-llm.key") || !strings.Contains(err.Error(), "LLM_API_KEY") {
		t.Fatalf("error should name -llm.key and LLM_API_KEY, got %q", err)
	}
}

func TestValidateConfig_OneShotNeedsInputAndGameType(t *testing.T) {
	t.Parallel()
	cfg := validBase()
	cfg.InputPath = ""
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for missing input path")
	}
	cfg = validBase()
	cfg.GameType = "crossword"
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for unknown game type")
	}
}

func TestValidateConfig_ServeModeSkipsPerRunFields(t *testing.T) {
	t.Parallel()
	cfg := Config{LLMModel: "gpt-4o", LLMAPIKey: "sk-test", Serve: true}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("serve mode should not require input or game type: %v", err)
	}
}

func TestApplyFileConfig_FillsOnlyUnsetValues(t *testing.T) {
	t.Parallel()
	cfg := Config{
		LLMModel:   "llama3", // explicit, must survive
		MaxRetries: workflow.DefaultMaxRetries,
	}
	var fc FileConfig
	fc.LLM.Model = "gpt-4o-mini"
	fc.LLM.APIKey = "sk-from-file"
	fc.Max.Retries = 5
	fc.Templates.Dir = "my-templates"

	ApplyFileConfig(&cfg, fc)

	if cfg.LLMModel != "llama3" {
		t.Fatalf("explicit model overridden: %q", cfg.LLMModel)
	}
	if cfg.LLMAPIKey != "sk-from-file" {
		t.Fatalf("unset key not filled: %q", cfg.LLMAPIKey)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("default retries should yield to file value, got %d", cfg.MaxRetries)
	}
	if cfg.TemplateDir != "my-templates" {
		t.Fatalf("unset template dir not filled: %q", cfg.TemplateDir)
	}
}

func TestApplyFileConfig_DoesNotOverrideExplicitPaths(t *testing.T) {
	t.Parallel()
	cfg := Config{InputPath: "a.md", OutputPath: "out.html"}
	var fc FileConfig
	fc.Input = "b.md"
	fc.Output = "other.html"
	ApplyFileConfig(&cfg, fc)
	if cfg.InputPath != "a.md" || cfg.OutputPath != "out.html" {
		t.Fatalf("file config overrode explicit paths: %+v", cfg)
	}
}

func TestLoadConfigFile_YAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "gamedoc.yaml")
	body := `input: biology.pdf
game: matching
llm:
  base: http://localhost:11434/v1
  model: llama3
max:
  retries: 4
artifacts:
  studySheet: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Input != "biology.pdf" || fc.Game != "matching" {
		t.Fatalf("unexpected top-level values: %+v", fc)
	}
	if fc.LLM.BaseURL != "http://localhost:11434/v1" || fc.LLM.Model != "llama3" {
		t.Fatalf("unexpected llm section: %+v", fc.LLM)
	}
	if fc.Max.Retries != 4 || !fc.Artifacts.StudySheet {
		t.Fatalf("unexpected nested values: %+v", fc)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "gamedoc.json")
	body := `{"input":"notes.txt","game":"flashcards","llm":{"key":"sk-json"},"cache":{"dir":"/tmp/cache","strictPerms":true}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Input != "notes.txt" || fc.Game != "flashcards" || fc.LLM.APIKey != "sk-json" {
		t.Fatalf("unexpected values: %+v", fc)
	}
	if fc.Cache.Dir != "/tmp/cache" || !fc.Cache.StrictPerms {
		t.Fatalf("unexpected cache section: %+v", fc.Cache)
	}
}

func TestFillDefaults(t *testing.T) {
	t.Parallel()
	var cfg Config
	FillDefaults(&cfg)
	if cfg.LLMModel != "gpt-4o" || cfg.TemplateDir != "templates" {
		t.Fatalf("baked defaults not applied: %+v", cfg)
	}
	if cfg.CacheDir != ".gamedoc-cache" || cfg.ListenAddr != ":8080" {
		t.Fatalf("baked defaults not applied: %+v", cfg)
	}
	if cfg.MaxRetries != 0 || cfg.MaxPromptChars != 0 {
		t.Fatalf("numeric limits should stay zero for in-package defaults: %+v", cfg)
	}

	cfg = Config{LLMModel: "llama3", CacheDir: "/var/cache/gamedoc"}
	FillDefaults(&cfg)
	if cfg.LLMModel != "llama3" || cfg.CacheDir != "/var/cache/gamedoc" {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	t.Parallel()
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
