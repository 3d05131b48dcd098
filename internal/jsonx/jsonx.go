// Package jsonx recovers JSON objects from raw model responses. Models
// frequently wrap their output in markdown code fences despite being told
// not to; callers want the parsed object or an empty map, never an error.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	jsonFence = regexp.MustCompile("```json\\s*")
	bareFence = regexp.MustCompile("```\\s*")
)

// StripFences removes markdown code-fence markers and surrounding
// whitespace. Applying it twice yields the same result as applying it once.
func StripFences(text string) string {
	text = jsonFence.ReplaceAllString(text, "")
	text = bareFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ExtractObject parses text as a JSON object after fence stripping. On any
// parse failure it logs the failure with the offending text and returns an
// empty map. It never returns an error to the caller.
func ExtractObject(text string) map[string]any {
	cleaned := StripFences(text)
	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		log.Warn().Err(err).Int("len", len(cleaned)).Str("text", snippet(cleaned, 512)).Msg("json extraction failed")
		return map[string]any{}
	}
	if m == nil {
		// "null" parses without error but carries nothing usable.
		return map[string]any{}
	}
	return m
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
