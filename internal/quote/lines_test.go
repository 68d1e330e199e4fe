package quote

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLines(t *testing.T) {
	m := newMatchers(t)

	wide := strings.Repeat("a", 80) + "    " + strings.Repeat("b", 70)
	wider := strings.Repeat("a", 100) + "   " + strings.Repeat("b", 100) + "  " + strings.Repeat("c", 60)
	anchoredWide := strings.Repeat("a", 60) + "  PREPARED BY: Jane Doe    " + strings.Repeat("b", 130)

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"crlf and blanks", "a\r\nb\n\n  c  \r", []string{"a", "b", "c"}},
		{"merged anchor", "Acme Corp PREPARED BY: Jane Doe", []string{"Acme Corp", "PREPARED BY: Jane Doe"}},
		{"two anchors", "TAILORED FOR: Acme PREPARED BY: Jane", []string{"TAILORED FOR: Acme", "PREPARED BY: Jane"}},
		{"anchor with spacing", "Acme prepared   by: Jane", []string{"Acme", "prepared   by: Jane"}},
		{"short gap kept", "Rodent Bait Station  12", []string{"Rodent Bait Station  12"}},
		{"long line split on gaps", wide, []string{strings.Repeat("a", 80), strings.Repeat("b", 70)}},
		{"very long line split on gaps", wider, []string{strings.Repeat("a", 100), strings.Repeat("b", 100), strings.Repeat("c", 60)}},
		{"anchor then column split", anchoredWide, []string{strings.Repeat("a", 60), "PREPARED BY: Jane Doe", strings.Repeat("b", 130)}},
		{"mid-line tailored for", "Quote 1042 TAILORED FOR: Globex Inc", []string{"Quote 1042", "TAILORED FOR: Globex Inc"}},
		{"empty", "  \n\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.NormalizeLines(tt.in))
		})
	}
}

func TestFindAnchor(t *testing.T) {
	lines := []string{"x", "Equipment", "y", "Equipment"}
	isEquipment := func(s string) bool { return s == "Equipment" }

	assert.Equal(t, 1, FindAnchor(lines, 0, isEquipment))
	assert.Equal(t, 3, FindAnchor(lines, 2, isEquipment))
	assert.Equal(t, 1, FindAnchor(lines, -5, isEquipment))
	assert.Equal(t, -1, FindAnchor(lines, 4, isEquipment))
}

func TestGatherBlock(t *testing.T) {
	stopAtHeading := func(s string) bool { return strings.HasPrefix(s, "#") }

	t.Run("start line never stops", func(t *testing.T) {
		lines := []string{"# heading", "a", "b", "# next"}
		assert.Equal(t, []string{"# heading", "a", "b"}, GatherBlock(lines, 0, stopAtHeading, 0))
	})
	t.Run("max lines", func(t *testing.T) {
		lines := []string{"a", "b", "c", "d"}
		assert.Equal(t, []string{"a", "b"}, GatherBlock(lines, 0, stopAtHeading, 2))
	})
	t.Run("out of range", func(t *testing.T) {
		assert.Nil(t, GatherBlock([]string{"a"}, 3, stopAtHeading, 0))
		assert.Nil(t, GatherBlock([]string{"a"}, -1, stopAtHeading, 0))
	})
	t.Run("nil stop", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c"}, GatherBlock([]string{"a", "b", "c"}, 1, nil, 0))
	})
}
