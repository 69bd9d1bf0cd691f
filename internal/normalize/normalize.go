// Package normalize reduces structurally variable AI provider responses to a
// single answer string.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
)

// NoSolution is returned when a payload carries neither a flat text field nor
// any content-bearing element.
const NoSolution = "No solution provided."

// Text applies the extraction precedence to p and then attempts exactly one
// unwrap of a double-encoded {"text": ...} answer. It never fails.
func Text(p Payload) string {
	return Unwrap(extract(p))
}

func extract(p Payload) string {
	if p.HasFlat {
		return p.Flat
	}

	c := p.Content
	switch c.Kind {
	case ContentBlocks:
		parts := lo.Map(c.Blocks, func(b Block, _ int) string {
			return b.String()
		})
		return strings.Join(parts, " ")
	case ContentText:
		return c.Text
	case ContentTagged:
		return c.Tagged.Text
	case ContentOpaque:
		return compact(c.Raw)
	default:
		return NoSolution
	}
}

// Unwrap returns the text field of s when s is a JSON object carrying a
// non-empty string "text"; otherwise s unchanged. Only one level is removed.
func Unwrap(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return s
	}

	var wrapped struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
		return s
	}
	if wrapped.Text == nil || *wrapped.Text == "" {
		return s
	}
	return *wrapped.Text
}
