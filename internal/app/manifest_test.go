package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperifyio/gamedoc/internal/gamespec"
	"github.com/hyperifyio/gamedoc/internal/gametype"
	"github.com/hyperifyio/gamedoc/internal/workflow"
)

func TestBuildManifest_RecordsRunDetails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.md")
	output := filepath.Join(dir, "game.html")
	if err := os.WriteFile(input, []byte("# Notes\nsome text\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(output, []byte("<html>game</html>"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	cfg := Config{InputPath: input, LLMModel: "gpt-4o"}
	outcome := &workflow.Outcome{
		Spec:     &gamespec.Spec{GameType: gametype.Quiz, Title: "Notes Quiz"},
		Approved: true,
		Attempts: 2,
	}
	m, err := buildManifest(cfg, gametype.Quiz, outcome, output, nil)
	if err != nil {
		t.Fatalf("build manifest: %v", err)
	}

	if m.Tool != "gamedoc" || m.ToolVersion == "" {
		t.Fatalf("missing tool identity: %+v", m)
	}
	if m.RunID == "" {
		t.Fatal("missing run id")
	}
	if m.GameType != "quiz" || m.Title != "Notes Quiz" || m.Model != "gpt-4o" {
		t.Fatalf("wrong run details: %+v", m)
	}
	if m.Attempts != 2 || !m.Approved {
		t.Fatalf("wrong workflow outcome: %+v", m)
	}
	if m.Source.Path != input || len(m.Source.SHA256) != 64 || m.Source.Bytes == 0 {
		t.Fatalf("bad source artifact: %+v", m.Source)
	}
	if m.Game.Path != output || len(m.Game.SHA256) != 64 {
		t.Fatalf("bad game artifact: %+v", m.Game)
	}
	if m.Game.SHA256 == m.Source.SHA256 {
		t.Fatal("distinct files should hash differently")
	}
}

func TestBuildManifest_IncludesStudySheets(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	output := filepath.Join(dir, "out.html")
	sheet := filepath.Join(dir, "sheet.md")
	for _, p := range []string{input, output, sheet} {
		if err := os.WriteFile(p, []byte("content of "+p), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	m, err := buildManifest(Config{InputPath: input}, gametype.Matching, nil, output, []string{sheet})
	if err != nil {
		t.Fatalf("build manifest: %v", err)
	}
	if len(m.StudySheet) != 1 || m.StudySheet[0].Path != sheet {
		t.Fatalf("study sheet not recorded: %+v", m.StudySheet)
	}
}

func TestBuildManifest_MissingSourceFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	output := filepath.Join(dir, "out.html")
	if err := os.WriteFile(output, []byte("x"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
	_, err := buildManifest(Config{InputPath: filepath.Join(dir, "gone.pdf")}, gametype.Quiz, nil, output, nil)
	if err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestMarshalManifestJSON_RoundTrips(t *testing.T) {
	t.Parallel()
	m := manifest{Tool: "gamedoc", RunID: "abc", GameType: "flashcards", Model: "gpt-4o"}
	b, err := marshalManifestJSON(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if b[len(b)-1] != '\n' {
		t.Fatal("manifest should end with a newline")
	}
	var back manifest
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.GameType != "flashcards" || back.RunID != "abc" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
