package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/gamedoc/internal/gametype"
	"github.com/hyperifyio/gamedoc/internal/workflow"
)

// manifestArtifact records one produced file with enough detail to verify it
// later.
type manifestArtifact struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// manifest is the reproducibility sidecar written next to the generated game.
// It names the inputs, the model, and every produced artifact so a run can be
// audited without re-running it.
type manifest struct {
	Tool        string `json:"tool"`
	ToolVersion string `json:"toolVersion"`
	ToolCommit  string `json:"toolCommit,omitempty"`
	RunID       string `json:"runId"`
	GeneratedAt string `json:"generatedAt"`

	Source manifestArtifact `json:"source"`

	GameType string `json:"gameType"`
	Title    string `json:"title,omitempty"`
	Model    string `json:"model"`
	Attempts int    `json:"attempts"`
	Approved bool   `json:"approved"`

	Game       manifestArtifact   `json:"game"`
	StudySheet []manifestArtifact `json:"studySheet,omitempty"`
}

// buildManifest assembles the sidecar for a finished run. The output file must
// already exist on disk so it can be hashed.
func buildManifest(cfg Config, gt gametype.Type, outcome *workflow.Outcome, outputPath string, studySheetPaths []string) (manifest, error) {
	m := manifest{
		Tool:        "gamedoc",
		ToolVersion: BuildVersion,
		ToolCommit:  BuildCommit,
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		GameType:    string(gt),
		Model:       cfg.LLMModel,
	}
	if outcome != nil {
		m.Attempts = outcome.Attempts
		m.Approved = outcome.Approved
		if outcome.Spec != nil {
			m.Title = outcome.Spec.Title
		}
	}

	src, err := artifactFor(cfg.InputPath)
	if err != nil {
		return m, fmt.Errorf("hash source: %w", err)
	}
	m.Source = src

	game, err := artifactFor(outputPath)
	if err != nil {
		return m, fmt.Errorf("hash output: %w", err)
	}
	m.Game = game

	for _, p := range studySheetPaths {
		sheet, err := artifactFor(p)
		if err != nil {
			return m, fmt.Errorf("hash study sheet: %w", err)
		}
		m.StudySheet = append(m.StudySheet, sheet)
	}
	return m, nil
}

func marshalManifestJSON(m manifest) ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func artifactFor(path string) (manifestArtifact, error) {
	sum, size, err := sha256File(path)
	if err != nil {
		return manifestArtifact{}, err
	}
	return manifestArtifact{Path: path, SHA256: sum, Bytes: size}, nil
}

// sha256File hashes a file without loading it whole into memory.
func sha256File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
