package quote

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/startpacket/internal/entity"
)

// EquipmentResult is the equipment tally plus the quoted total cost.
type EquipmentResult struct {
	Summary   entity.EquipmentSummary
	TotalCost *float64
}

var (
	equipmentTotalRe   = regexp.MustCompile(`(?i)^total\s+cost\s+of\s+equipment`)
	equipmentCaptionRe = regexp.MustCompile(`(?i)equipment\s+summary`)
	equipmentWordRe    = regexp.MustCompile(`(?i)\bequipment\b`)
	routineHeadingRe   = regexp.MustCompile(`(?i)routine\s+management\s+services`)
	serviceFrequencyRe = regexp.MustCompile(`(?i)service\s+frequency`)
	trailingQuantityRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*$`)
	leadingQuantityRe  = regexp.MustCompile(`^\s*([0-9]+)\s+(.*)`)
)

// ExtractEquipment tallies the equipment table that ends at "Total Cost of
// Equipment". The table start is found by looking back from the total line,
// which keeps table-of-contents entries out of the tally. Without an
// "Equipment" caption the look-back window up to the nearest header
// terminator is read instead, and only rows naming known equipment count.
func (m *matchers) ExtractEquipment(lines []string) EquipmentResult {
	var res EquipmentResult

	totalIdx := FindAnchor(lines, 0, equipmentTotalRe.MatchString)
	if totalIdx < 0 {
		return res
	}
	res.TotalCost = firstCurrency(lines[totalIdx])

	startIdx, captioned := m.equipmentStart(lines, totalIdx)
	for _, row := range lines[startIdx+1 : totalIdx] {
		if m.isHeaderStop(row) {
			continue
		}
		if routineHeadingRe.MatchString(row) {
			break
		}
		if serviceFrequencyRe.MatchString(row) {
			continue
		}
		name, qty, ok := parseEquipmentRow(row)
		if !ok {
			continue
		}
		if !captioned && !m.knownEquipment(name) {
			continue
		}
		m.classifyEquipment(&res.Summary, name, qty)
	}

	res.Summary.Summary = EquipmentSignature(res.Summary)
	return res
}

// equipmentStart returns the index just before the table body and whether an
// "Equipment" caption bounded it.
func (m *matchers) equipmentStart(lines []string, totalIdx int) (int, bool) {
	floor := max(0, totalIdx-m.vocab.Limits.EquipmentLookback)
	for back := totalIdx - 1; back >= floor; back-- {
		if equipmentCaptionRe.MatchString(lines[back]) {
			continue
		}
		if equipmentWordRe.MatchString(lines[back]) {
			return back, true
		}
	}
	for back := totalIdx - 1; back >= floor; back-- {
		if m.isHeaderStop(lines[back]) {
			return back, false
		}
	}
	return floor - 1, false
}

func (m *matchers) knownEquipment(name string) bool {
	for _, rule := range m.equipment {
		if rule.pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// parseEquipmentRow reads "Name  12", falling back to "12 Name".
func parseEquipmentRow(row string) (string, float64, bool) {
	if loc := trailingQuantityRe.FindStringSubmatchIndex(row); loc != nil {
		qty, err := strconv.ParseFloat(row[loc[2]:loc[3]], 64)
		if err != nil {
			return "", 0, false
		}
		name := strings.TrimSpace(row[:loc[0]])
		if name == "" {
			return "", 0, false
		}
		return name, qty, true
	}
	if sm := leadingQuantityRe.FindStringSubmatch(row); sm != nil {
		qty, err := strconv.ParseFloat(sm[1], 64)
		if err != nil {
			return "", 0, false
		}
		return strings.TrimSpace(sm[2]), qty, true
	}
	return "", 0, false
}

// classifyEquipment applies the rule table top to bottom; the first match wins.
func (m *matchers) classifyEquipment(sum *entity.EquipmentSummary, name string, qty float64) {
	for _, rule := range m.equipment {
		if !rule.pattern.MatchString(name) {
			continue
		}
		switch rule.bucket {
		case BucketRodentBaitStation:
			sum.RodentBaitStationQty += qty
		case BucketMultiCatchTrap:
			sum.MultiCatchTrapQty += qty
		case BucketInsectLightTrap:
			sum.InsectLightTrapQty += qty
		}
		return
	}
	sum.OtherEquipment = append(sum.OtherEquipment, entity.EquipmentItem{Name: name, Quantity: qty})
}

// EquipmentSignature renders "2 MRT, 12 RBS, 1 ILT, 3 Glue Board".
func EquipmentSignature(e entity.EquipmentSummary) string {
	var parts []string
	if e.MultiCatchTrapQty != 0 {
		parts = append(parts, formatQuantity(e.MultiCatchTrapQty)+" MRT")
	}
	if e.RodentBaitStationQty != 0 {
		parts = append(parts, formatQuantity(e.RodentBaitStationQty)+" RBS")
	}
	if e.InsectLightTrapQty != 0 {
		parts = append(parts, formatQuantity(e.InsectLightTrapQty)+" ILT")
	}
	for _, item := range e.OtherEquipment {
		if item.Name == "" {
			continue
		}
		if item.Quantity != 0 {
			parts = append(parts, formatQuantity(item.Quantity)+" "+item.Name)
		} else {
			parts = append(parts, item.Name)
		}
	}
	return strings.Join(parts, ", ")
}
