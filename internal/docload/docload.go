// Package docload converts source documents into plain text for the
// pipeline. Each supported format has its own converter behind a shared
// interface; the Loader dispatches on file extension.
package docload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Document is the textual form of a source file.
type Document struct {
	Path string
	// Name is the file stem, used downstream for artifact naming.
	Name string
	// Title is best effort: the first Markdown heading, the HTML <title>,
	// or empty when the format carries no markup.
	Title string
	Text  string
}

// Converter turns a source file into a Document. Implementations should be
// deterministic and avoid side effects beyond reading the file.
type Converter interface {
	Convert(ctx context.Context, path string) (Document, error)
}

// ErrUnsupportedFormat indicates the file cannot be converted to text.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrNoText indicates the converter ran but found nothing readable.
var ErrNoText = errors.New("no readable text")

// Loader dispatches to a per-format converter by file extension. Unknown
// extensions are attempted as plain text; content that looks binary is
// rejected with ErrUnsupportedFormat.
type Loader struct{}

func (l *Loader) Convert(ctx context.Context, path string) (Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return (&PDFConverter{}).Convert(ctx, path)
	case ".html", ".htm":
		return (&HTMLConverter{}).Convert(ctx, path)
	case ".md", ".markdown":
		return (&MarkdownConverter{}).Convert(ctx, path)
	default:
		return (&TextConverter{}).Convert(ctx, path)
	}
}

// TextConverter reads a file verbatim as UTF-8 text.
type TextConverter struct{}

func (*TextConverter) Convert(_ context.Context, path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	if looksBinary(b) {
		return Document{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	return Document{
		Path: path,
		Name: stem(path),
		Text: strings.TrimSpace(string(b)),
	}, nil
}

var mdHeadingRe = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.+?)\s*$`)

// MarkdownConverter reads Markdown as-is; the markup is already plain enough
// for prompt embedding. The first heading becomes the title.
type MarkdownConverter struct{}

func (*MarkdownConverter) Convert(_ context.Context, path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	text := strings.TrimSpace(string(b))
	title := ""
	for _, line := range strings.Split(text, "\n") {
		if m := mdHeadingRe.FindStringSubmatch(strings.TrimSpace(line)); len(m) == 2 {
			title = strings.TrimSpace(m[1])
			break
		}
	}
	return Document{Path: path, Name: stem(path), Title: title, Text: text}, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// looksBinary reports whether the first KBs contain NUL bytes, which no
// text format this tool accepts would.
func looksBinary(b []byte) bool {
	probe := b
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
