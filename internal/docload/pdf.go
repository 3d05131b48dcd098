package docload

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	rpdf "rsc.io/pdf"
)

// PDFConverter extracts text from a PDF by walking each page's content
// stream and reassembling the positioned fragments into lines.
type PDFConverter struct{}

func (*PDFConverter) Convert(_ context.Context, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Document{}, fmt.Errorf("stat document: %w", err)
	}
	reader, err := rpdf.NewReader(f, info.Size())
	if err != nil {
		return Document{}, fmt.Errorf("parse pdf %s: %w", path, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := pageText(reader, i)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Int("page", i).Msg("pdf page skipped")
			continue
		}
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Document{}, fmt.Errorf("%w in %s (scanned or image-only pdf?)", ErrNoText, path)
	}
	return Document{Path: path, Name: stem(path), Text: text}, nil
}

// pageText reassembles one page. The pdf library panics on malformed
// content streams, so the recovery here converts that into a per-page error.
func pageText(reader *rpdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()
	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return assembleText(page.Content().Text), nil
}

// assembleText orders positioned fragments top-to-bottom, left-to-right and
// joins them, inserting line breaks between rows and spaces across visible
// horizontal gaps.
func assembleText(frags []rpdf.Text) string {
	if len(frags) == 0 {
		return ""
	}
	sort.SliceStable(frags, func(a, b int) bool {
		if frags[a].Y != frags[b].Y {
			return frags[a].Y > frags[b].Y // PDF y grows upward
		}
		return frags[a].X < frags[b].X
	})

	var sb strings.Builder
	prev := frags[0]
	sb.WriteString(prev.S)
	for _, t := range frags[1:] {
		switch {
		case rowBreak(prev, t):
			sb.WriteString("\n")
		case wordGap(prev, t):
			sb.WriteString(" ")
		}
		sb.WriteString(t.S)
		prev = t
	}
	return strings.TrimSpace(sb.String())
}

func rowBreak(prev, cur rpdf.Text) bool {
	dy := prev.Y - cur.Y
	if dy < 0 {
		dy = -dy
	}
	return dy > 2
}

func wordGap(prev, cur rpdf.Text) bool {
	gap := cur.X - (prev.X + prev.W)
	threshold := 0.2 * cur.FontSize
	if threshold < 1 {
		threshold = 1
	}
	return gap > threshold
}
