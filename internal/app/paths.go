package app

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/gamedoc/internal/gametype"
)

// slugify converts an arbitrary document name into a lowercase hyphenated
// slug safe for filenames. Accents are decomposed and stripped so
// "Révision Finale" becomes "revision-finale".
func slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "document"
	}
	return out
}

// defaultOutputPath derives the output filename from the input document and
// game type when the user did not pick one: game_<type>_<stem>.html next to
// the working directory.
func defaultOutputPath(inputPath string, gt gametype.Type) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return "game_" + string(gt) + "_" + slugify(stem) + ".html"
}

// manifestSidecarPath returns the manifest path for a given output file.
func manifestSidecarPath(outputPath string) string {
	return outputPath + ".manifest.json"
}
