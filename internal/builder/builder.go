package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/hyperifyio/gamedoc/internal/gamespec"
)

// DefaultTemplateDir is where the game templates live relative to the
// working directory.
const DefaultTemplateDir = "templates"

// ErrTemplateNotFound indicates the template for the requested game type is
// missing from the template directory.
var ErrTemplateNotFound = errors.New("template not found")

// Builder renders a validated game structure into a self-contained HTML page.
type Builder struct {
	// TemplateDir overrides DefaultTemplateDir when non-empty.
	TemplateDir string
}

// templateData is the surface a game template can reference. Item lists are
// pre-serialized so the embedded script receives one JSON literal.
type templateData struct {
	Title      string
	ThemeColor string
	GameType   string
	ItemsJSON  string
	ItemCount  int
}

// Build loads `<game_type>_game.html` from the template directory and
// renders it with the structure's fields. Rendering uses text/template, so
// no escaping is added beyond what the template itself writes; the output is
// byte-identical for identical inputs.
func (b *Builder) Build(spec *gamespec.Spec) (string, error) {
	if spec == nil {
		return "", errors.New("nothing to build")
	}
	dir := b.dir()
	path := filepath.Join(dir, spec.GameType.TemplateFile())
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFoundError(path, dir)
		}
		return "", fmt.Errorf("read template %s: %w", path, err)
	}
	tmpl, err := template.New(spec.GameType.TemplateFile()).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", path, err)
	}
	items, err := spec.ItemsJSON()
	if err != nil {
		return "", fmt.Errorf("serialize %s items: %w", spec.GameType, err)
	}
	data := templateData{
		Title:      spec.Title,
		ThemeColor: spec.ThemeColor,
		GameType:   string(spec.GameType),
		ItemsJSON:  items,
		ItemCount:  spec.ItemCount(),
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", path, err)
	}
	return sb.String(), nil
}

func (b *Builder) dir() string {
	if strings.TrimSpace(b.TemplateDir) != "" {
		return b.TemplateDir
	}
	return DefaultTemplateDir
}

// notFoundError names the missing file and what is actually available so the
// fix is obvious from the message alone.
func notFoundError(path, dir string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", path)
	if names := availableTemplates(dir); len(names) > 0 {
		fmt.Fprintf(&sb, "Available templates: %s", strings.Join(names, ", "))
	} else {
		fmt.Fprintf(&sb, "No templates found in %s directory.\n", dir)
		sb.WriteString("Please ensure matching_game.html, quiz_game.html, and flashcards_game.html are in the templates folder.")
	}
	return fmt.Errorf("%w: %s", ErrTemplateNotFound, sb.String())
}

func availableTemplates(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names
}
