package problemgen

import (
	"fmt"
	"strings"

	"github.com/mathmaster/mathmaster/internal/llm"
)

// themeSchema is the structure a plan completion must decode to.
var themeSchema = &llm.Schema{
	Name: "theme-list",
	Definition: map[string]any{
		"type":     "array",
		"items":    map[string]any{"type": "string"},
		"minItems": 1,
	},
}

// FallbackTheme synthesizes the i-th (1-based) generic theme for topic.
func FallbackTheme(topic string, i int) string {
	return fmt.Sprintf("%s (pattern %d)", topic, i)
}

// FallbackThemes returns count synthesized themes.
func FallbackThemes(topic string, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = FallbackTheme(topic, i+1)
	}
	return out
}

// ParseThemes decodes a plan completion into exactly count themes. Short
// lists are padded with fallback themes, long lists truncated and blank
// entries replaced. When the completion cannot be decoded the full
// fallback list is returned together with the decoding error.
func ParseThemes(raw, topic string, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}

	decoded, err := llm.ValidateJSON(themeSchema, extractJSONArray(raw))
	if err != nil {
		return FallbackThemes(topic, count), fmt.Errorf("decode theme list: %w", err)
	}
	list := decoded.([]any)

	out := make([]string, count)
	for i := range out {
		var theme string
		if i < len(list) {
			theme = strings.TrimSpace(list[i].(string))
		}
		if theme == "" {
			theme = FallbackTheme(topic, i+1)
		}
		out[i] = theme
	}
	return out, nil
}

// extractJSONArray strips an optional Markdown code fence and any prose
// around the outermost brackets.
func extractJSONArray(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
