package pdftext

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"
)

// glyphRun is consecutive glyphs on one row with no visible gap between them.
type glyphRun struct {
	end  float64
	text strings.Builder
}

// groupRows clusters glyphs into visual rows. Glyphs whose baselines are
// within tolerance of a row's first glyph share that row. Rows run top of
// page first and glyphs left to right; separate runs are joined by one space.
func groupRows(texts []pdf.Text, tolerance float64) []string {
	glyphs := slices.Clone(texts)
	slices.SortStableFunc(glyphs, func(a, b pdf.Text) int {
		// PDF y grows upward
		return cmp.Compare(b.Y, a.Y)
	})

	var rows [][]pdf.Text
	var rowY float64
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if len(rows) == 0 || rowY-g.Y > tolerance {
			rows = append(rows, nil)
			rowY = g.Y
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], g)
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if line := joinRow(row); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinRow(row []pdf.Text) string {
	slices.SortStableFunc(row, func(a, b pdf.Text) int { return cmp.Compare(a.X, b.X) })

	var runs []*glyphRun
	for _, g := range row {
		gap := g.FontSize * 0.15
		if n := len(runs); n > 0 && g.X-runs[n-1].end <= gap {
			runs[n-1].text.WriteString(g.S)
			runs[n-1].end = max(runs[n-1].end, g.X+g.W)
			continue
		}
		run := &glyphRun{end: g.X + g.W}
		run.text.WriteString(g.S)
		runs = append(runs, run)
	}

	words := make([]string, 0, len(runs))
	for _, r := range runs {
		if w := strings.TrimSpace(r.text.String()); w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}
