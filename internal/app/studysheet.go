package app

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/yuin/goldmark"

	"github.com/hyperifyio/gamedoc/internal/gamespec"
)

// studySheetMarkdown renders the extracted summary as a printable revision
// sheet. Sections are omitted when the extractor produced nothing for them.
func studySheetMarkdown(sum gamespec.Summary) string {
	var b strings.Builder
	title := sum.Topic
	if title == "" {
		title = "Study Sheet"
	}
	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if sum.SubjectArea != "" {
		b.WriteString("Subject area: ")
		b.WriteString(sum.SubjectArea)
		b.WriteString("\n\n")
	}
	writeListSection(&b, "Key Concepts", sum.KeyConcepts)
	writeListSection(&b, "Facts to Remember", sum.Facts)
	writeListSection(&b, "Learning Objectives", sum.LearningObjectives)
	return b.String()
}

func writeListSection(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("## ")
	b.WriteString(heading)
	b.WriteString("\n\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// writeStudySheet produces the study sheet in three forms under dir: the
// Markdown source, an HTML rendering, and a simple PDF. Returns the written
// paths in that order.
func writeStudySheet(sum gamespec.Summary, dir string, slug string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	md := studySheetMarkdown(sum)
	base := filepath.Join(dir, slug+"_study_sheet")

	mdPath := base + ".md"
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return nil, fmt.Errorf("write study sheet markdown: %w", err)
	}

	htmlPath := base + ".html"
	html, err := studySheetHTML(md, sum.Topic)
	if err != nil {
		return nil, fmt.Errorf("render study sheet html: %w", err)
	}
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("write study sheet html: %w", err)
	}

	pdfPath := base + ".pdf"
	if err := writeStudySheetPDF(md, pdfPath); err != nil {
		return nil, fmt.Errorf("write study sheet pdf: %w", err)
	}
	return []string{mdPath, htmlPath, pdfPath}, nil
}

// studySheetHTML converts the Markdown sheet to a standalone HTML page.
func studySheetHTML(markdown string, topic string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return "", err
	}
	title := topic
	if title == "" {
		title = "Study Sheet"
	}
	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>")
	page.WriteString(htmlEscape(title))
	page.WriteString("</title>\n<style>body{font-family:Georgia,serif;max-width:46rem;margin:2rem auto;padding:0 1rem;line-height:1.5}h1{border-bottom:2px solid #333}</style>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// writeStudySheetPDF renders the Markdown sheet as a minimal PDF, laying out
// headings and bullet lists without full Markdown support.
func writeStudySheetPDF(markdown string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()
	// Core fonts are cp1252; translate so bullets and accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(4)
			continue
		}
		if strings.HasPrefix(s, "#") {
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			size := 15.0
			if i >= 2 {
				size = 12.5
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		if strings.HasPrefix(s, "- ") {
			pdf.SetX(pdf.GetX() + 4)
			pdf.MultiCell(0, 5, tr("• "+strings.TrimPrefix(s, "- ")), "", "L", false)
			continue
		}
		pdf.MultiCell(0, 5, tr(s), "", "L", false)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}
