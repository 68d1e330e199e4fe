package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/startpacket/internal/entity"
)

func TestExtractEquipment_SkipsTableOfContents(t *testing.T) {
	m := newMatchers(t)
	lines := []string{
		"Table of Contents",
		"Equipment",
		"Investment Summary",
		"Tailored For: Acme",
		"Equipment",
		"Rodent Bait Station  12",
		"Multi-Catch Trap  4",
		"Total Cost of Equipment $360.00",
	}

	res := m.ExtractEquipment(lines)

	assert.Equal(t, 12.0, res.Summary.RodentBaitStationQty)
	assert.Equal(t, 4.0, res.Summary.MultiCatchTrapQty)
	assert.Zero(t, res.Summary.InsectLightTrapQty)
	assert.Empty(t, res.Summary.OtherEquipment)
	assert.Equal(t, 360.0, val(t, res.TotalCost))
	assert.Equal(t, "4 MRT, 12 RBS", res.Summary.Summary)
}

func TestExtractEquipment_LeadingQuantitiesAndOtherItems(t *testing.T) {
	m := newMatchers(t)
	lines := []string{
		"Equipment Summary",
		"Equipment",
		"2 Lumnia Compact",
		"Glue Boards 3",
		"Service Frequency Monthly 12",
		"Eradico Station 6",
		"Total Cost of Equipment",
	}

	res := m.ExtractEquipment(lines)

	assert.Equal(t, 2.0, res.Summary.InsectLightTrapQty)
	assert.Equal(t, 6.0, res.Summary.RodentBaitStationQty)
	require.Len(t, res.Summary.OtherEquipment, 1)
	assert.Equal(t, entity.EquipmentItem{Name: "Glue Boards", Quantity: 3}, res.Summary.OtherEquipment[0])
	assert.Nil(t, res.TotalCost)
	assert.Equal(t, "6 RBS, 2 ILT, 3 Glue Boards", res.Summary.Summary)
}

func TestExtractEquipment_WithoutCaption(t *testing.T) {
	m := newMatchers(t)
	lines := []string{
		"Prepared For: Acme Corp John Smith",
		"123 Main Street Houston, TX 77002",
		"Investment Summary",
		"Rodent Bait Station  12",
		"Glue Boards 3",
		"Multi-Catch Trap  4",
		"Total Cost of Equipment $360.00",
	}

	res := m.ExtractEquipment(lines)

	assert.Equal(t, 12.0, res.Summary.RodentBaitStationQty)
	assert.Equal(t, 4.0, res.Summary.MultiCatchTrapQty)
	assert.Empty(t, res.Summary.OtherEquipment, "unknown rows need a caption")
	assert.Equal(t, 360.0, val(t, res.TotalCost))
}

func TestExtractEquipment_TotalWithoutRows(t *testing.T) {
	m := newMatchers(t)
	res := m.ExtractEquipment([]string{"Prepared For: Acme", "Total Cost of Equipment $75.50"})
	assert.Equal(t, 75.5, val(t, res.TotalCost))
	assert.Empty(t, res.Summary.Summary)
}

func TestExtractEquipment_NoTotalLine(t *testing.T) {
	m := newMatchers(t)
	res := m.ExtractEquipment([]string{"Equipment", "Rodent Bait Station 12"})
	assert.Equal(t, EquipmentResult{}, res)
}

func TestParseEquipmentRow(t *testing.T) {
	tests := []struct {
		row  string
		name string
		qty  float64
		ok   bool
	}{
		{"Rodent Bait Station  12", "Rodent Bait Station", 12, true},
		{"Fly Light 1.5", "Fly Light", 1.5, true},
		{"3 Glue Boards", "Glue Boards", 3, true},
		{"Rodent Bait Station", "", 0, false},
		{"42", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.row, func(t *testing.T) {
			name, qty, ok := parseEquipmentRow(tt.row)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.qty, qty)
		})
	}
}

func TestEquipmentSignature(t *testing.T) {
	sum := entity.EquipmentSummary{
		RodentBaitStationQty: 12,
		MultiCatchTrapQty:    2,
		InsectLightTrapQty:   1,
		OtherEquipment: []entity.EquipmentItem{
			{Name: "Glue Board", Quantity: 3},
			{Name: "Door Sweep"},
			{Quantity: 4},
		},
	}
	assert.Equal(t, "2 MRT, 12 RBS, 1 ILT, 3 Glue Board, Door Sweep", EquipmentSignature(sum))
	assert.Empty(t, EquipmentSignature(entity.EquipmentSummary{}))
}
