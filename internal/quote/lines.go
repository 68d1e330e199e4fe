package quote

import (
	"strings"
	"unicode/utf8"
)

// NormalizeLines splits raw document text into trimmed, non-empty lines and
// expands physical lines that hold several logical rows.
func (m *matchers) NormalizeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		for _, part := range m.splitAtAnchors(line) {
			out = append(out, m.splitColumns(part)...)
		}
	}
	return out
}

// splitAtAnchors starts a new line at every embedded "PREPARED BY:" style
// anchor. Text before the first anchor stays on its own line.
func (m *matchers) splitAtAnchors(line string) []string {
	if m.mergedAnchor == nil {
		return []string{line}
	}
	locs := m.mergedAnchor.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return []string{line}
	}
	var parts []string
	prev := 0
	for _, loc := range locs {
		if seg := strings.TrimSpace(line[prev:loc[0]]); seg != "" {
			parts = append(parts, seg)
		}
		prev = loc[0]
	}
	if seg := strings.TrimSpace(line[prev:]); seg != "" {
		parts = append(parts, seg)
	}
	return parts
}

// splitColumns breaks collapsed multi-column text on runs of two or more spaces.
func (m *matchers) splitColumns(line string) []string {
	if utf8.RuneCountInString(line) <= m.vocab.Limits.SplitLength || !gapRe.MatchString(line) {
		return []string{line}
	}
	var parts []string
	for _, p := range gapRe.Split(line, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
