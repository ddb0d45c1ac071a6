// Package template turns the structured text of a lottery's originating post
// into a validated lottery configuration.
package template

import (
	"strings"
)

const headerPrefix = "### "

// Labels recognized by the validator. The parser itself keeps every section
// it finds, so new optional sections can be added without touching it.
const (
	LabelName            = "lottery name"
	LabelPrize           = "prize"
	LabelWinnerCount     = "winner count"
	LabelDrawType        = "draw type"
	LabelDrawCondition   = "draw condition"
	LabelSpecificFloors  = "specific floors"
	LabelMinParticipants = "min participants"
	LabelOnInsufficient  = "on insufficient"
	LabelDescription     = "description"
	LabelExtraInfo       = "extra info"
)

// Parse extracts a label -> body map from raw sectioned text. A section is
// introduced by a "### " header line and runs until the next header or
// end-of-text. Bodies are trimmed but may contain embedded blank lines. If a
// label repeats, the last occurrence wins. Text before the first header is
// ignored.
func Parse(raw string) map[string]string {
	sections := make(map[string]string)

	var label string
	var body []string
	flush := func() {
		if label != "" {
			sections[label] = strings.TrimSpace(strings.Join(body, "\n"))
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, headerPrefix) {
			flush()
			label = NormalizeLabel(strings.TrimPrefix(trimmed, headerPrefix))
			body = nil
			continue
		}
		if label != "" {
			body = append(body, line)
		}
	}
	flush()

	return sections
}

// NormalizeLabel canonicalizes a section header: trailing parenthesized
// qualifiers such as "(optional)" are stripped, whitespace collapsed, and the
// result lowercased.
func NormalizeLabel(header string) string {
	label := strings.TrimSpace(header)
	if idx := strings.LastIndex(label, "("); idx >= 0 && strings.HasSuffix(label, ")") {
		label = label[:idx]
	}
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
