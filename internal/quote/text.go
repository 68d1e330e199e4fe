package quote

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	currencyRe     = regexp.MustCompile(`\$([0-9][0-9,]*(?:\.[0-9]{2})?)`)
	emailRe        = regexp.MustCompile(`(?i)([A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,})`)
	cityStateZipRe = regexp.MustCompile(`^(.+?),\s*([A-Z]{2})[,\s]*([0-9]{5})(?:-?[0-9]{4})?`)
	gapRe          = regexp.MustCompile(`\s{2,}`)
	pageMarkerRe   = regexp.MustCompile(`(?i)^page\s+\d+`)
	urlRe          = regexp.MustCompile(`(?i)https?://`)
	digitsOnlyRe   = regexp.MustCompile(`^[0-9]+$`)
	bulletRe       = regexp.MustCompile(`^[•\-*\x{2022}]+\s*`)
	spaceRunRe     = regexp.MustCompile(`\s+`)
)

// parseAmount turns "1,250.00" into 1250.
func parseAmount(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// firstCurrency returns the first "$"-prefixed amount in s.
func firstCurrency(s string) *float64 {
	m := currencyRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	if f, ok := parseAmount(m[1]); ok {
		return &f
	}
	return nil
}

// currencies returns every "$"-prefixed amount in s, in order.
func currencies(s string) []float64 {
	var out []float64
	for _, m := range currencyRe.FindAllStringSubmatch(s, -1) {
		if f, ok := parseAmount(m[1]); ok {
			out = append(out, f)
		}
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func firstEmail(s string) string {
	if m := emailRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func stripEmails(s string) string {
	return strings.TrimSpace(emailRe.ReplaceAllString(s, ""))
}

// normalizeLabel lowercases, reads "4" as "for" and keeps letters only,
// so "Tailored 4:" and "TAILORED FOR" compare equal.
func normalizeLabel(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "4", "for")
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, s)
}

func hasPrefixFold(line string, prefixes []string) bool {
	lower := strings.ToLower(line)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// splitCommaSafe splits on commas that are not inside parentheses.
func splitCommaSafe(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			out = append(out, t)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case r == ',' && depth == 0:
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}

// dedupeFold keeps the first occurrence of each case-insensitive value.
func dedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		r := []rune(strings.ToLower(p))
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

// formatQuantity prints whole numbers without a fractional part.
func formatQuantity(v float64) string {
	if math.Abs(v-math.Round(v)) < 0.00001 {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ptr[T any](v T) *T { return &v }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
