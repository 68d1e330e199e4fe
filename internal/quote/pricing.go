package quote

import (
	"regexp"
	"strings"
)

// PricingSummary holds the three investment figures. A nil field was not found.
type PricingSummary struct {
	OneTimeCost        *float64
	InitialServiceCost *float64
	AverageMonthlyCost *float64
}

// Complete reports whether every figure is known.
func (p PricingSummary) Complete() bool {
	return p.OneTimeCost != nil && p.InitialServiceCost != nil && p.AverageMonthlyCost != nil
}

// slots returns the fields in column order: one-time, initial, monthly.
func (p *PricingSummary) slots() []**float64 {
	return []**float64{&p.OneTimeCost, &p.InitialServiceCost, &p.AverageMonthlyCost}
}

// PricingSection is the text a PricingStrategy searches. Bounded is false when
// the document had no summary heading and Lines is the whole document.
type PricingSection struct {
	Lines   []string
	Bounded bool
	Limits  Limits
	noise   func(string) bool
}

// IsNoise flags address-looking rows and numbered rows.
func (s PricingSection) IsNoise(line string) bool {
	return s.noise != nil && s.noise(line)
}

// PricingStrategy fills whichever PricingSummary fields are still nil.
// Strategies never overwrite a value found by an earlier strategy.
type PricingStrategy interface {
	Name() string
	Resolve(section PricingSection, p *PricingSummary)
}

var (
	oneTimeLabelRe  = regexp.MustCompile(`(?i)one[-\s]?time\s+cost`)
	initialLabelRe  = regexp.MustCompile(`(?i)initial\s+(?:svc|service)\s+cost`)
	monthlyLabelRe  = regexp.MustCompile(`(?i)(?:avg|average)\s+monthly\s+cost`)
	totalInvestRe   = regexp.MustCompile(`(?i)total\s+investment`)
	summaryAnchorRe = regexp.MustCompile(`(?i)investment\s+summary|total\s+investment`)
	numberedTOCRe   = regexp.MustCompile(`(?i)^\d+\s+(?:investment\s+summary|total\s+investment)`)
	numberedRowRe   = regexp.MustCompile(`(?i)^\d+\s+[a-z]`)
	cityNumberRe    = regexp.MustCompile(`(?i)^[A-Z][a-z]+,\s*\d+`)
	otherLabelRe    = regexp.MustCompile(`(?i)^[a-z]+\s+(?:cost|price|total|investment)`)
	labelLeadRe     = regexp.MustCompile(`^[:\s-]+`)
)

// DefaultPricingStrategies returns the tiers in precedence order.
func DefaultPricingStrategies() []PricingStrategy {
	return []PricingStrategy{TotalInvestmentRow{}, LabelledColumns{}, LabelProximity{}}
}

// TotalInvestmentRow reads a "Total investment" row carrying at least three
// amounts: one-time, initial service and average monthly, in that order.
type TotalInvestmentRow struct{}

func (TotalInvestmentRow) Name() string { return "total_investment_row" }

func (TotalInvestmentRow) Resolve(section PricingSection, p *PricingSummary) {
	idx := FindAnchor(section.Lines, 0, totalInvestRe.MatchString)
	if idx < 0 {
		return
	}
	amounts := currencies(section.Lines[idx])
	if len(amounts) < 3 {
		return
	}
	for i, slot := range p.slots() {
		if *slot == nil {
			*slot = ptr(amounts[i])
		}
	}
}

// LabelledColumns handles a header row naming all three figures followed by
// value rows that carry one, two or three amounts each.
type LabelledColumns struct{}

func (LabelledColumns) Name() string { return "labelled_columns" }

func (LabelledColumns) Resolve(section PricingSection, p *PricingSummary) {
	lines := section.Lines
	header := FindAnchor(lines, 0, func(line string) bool {
		return oneTimeLabelRe.MatchString(line) && initialLabelRe.MatchString(line) && monthlyLabelRe.MatchString(line)
	})
	if header < 0 {
		return
	}
	slots := p.slots()
	cursor := 0
	last := min(len(lines)-1, header+section.Limits.ColumnLookahead)
	for _, row := range lines[header+1 : last+1] {
		if section.IsNoise(row) || (cityNumberRe.MatchString(row) && !strings.Contains(row, "$")) {
			continue
		}
		amounts := currencies(row)
		switch {
		case len(amounts) >= 3:
			for i, slot := range slots {
				if *slot == nil {
					*slot = ptr(amounts[i])
				}
			}
			return
		case len(amounts) == 2:
			if p.OneTimeCost == nil && p.InitialServiceCost == nil {
				p.OneTimeCost, p.InitialServiceCost = ptr(amounts[0]), ptr(amounts[1])
				cursor = 2
			} else if p.InitialServiceCost == nil && p.AverageMonthlyCost == nil {
				p.InitialServiceCost, p.AverageMonthlyCost = ptr(amounts[0]), ptr(amounts[1])
				return
			}
		case len(amounts) == 1:
			// single amounts fill the columns left to right, skipping known ones
			for cursor < len(slots) && *slots[cursor] != nil {
				cursor++
			}
			if cursor < len(slots) {
				*slots[cursor] = ptr(amounts[0])
				cursor++
			}
		}
		if p.Complete() {
			return
		}
	}
}

// LabelProximity looks for an amount after each label on the same line or
// within the next few lines.
type LabelProximity struct{}

func (LabelProximity) Name() string { return "label_proximity" }

func (LabelProximity) Resolve(section PricingSection, p *PricingSummary) {
	labels := []*regexp.Regexp{oneTimeLabelRe, initialLabelRe, monthlyLabelRe}
	for i, slot := range p.slots() {
		if *slot == nil {
			*slot = currencyNearLabel(section, labels[i])
		}
	}
}

func currencyNearLabel(section PricingSection, label *regexp.Regexp) *float64 {
	lines := section.Lines
	for i, line := range lines {
		loc := label.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := labelLeadRe.ReplaceAllString(strings.TrimSpace(line[loc[1]:]), "")
		if v := firstCurrency(rest); v != nil {
			return v
		}
		for look := 1; look <= section.Limits.LabelLookahead && i+look < len(lines); look++ {
			cand := lines[i+look]
			if otherLabelRe.MatchString(cand) && !strings.Contains(cand, "$") {
				break
			}
			if section.IsNoise(cand) {
				continue
			}
			if v := firstCurrency(cand); v != nil {
				return v
			}
		}
	}
	return nil
}

// isPricingNoise flags address-looking rows and numbered rows that carry
// amounts unrelated to the investment summary.
func (m *matchers) isPricingNoise(line string) bool {
	if m.pricingNoise != nil && m.pricingNoise.MatchString(line) {
		return true
	}
	return numberedRowRe.MatchString(line)
}

// pricingSection isolates the investment summary, falling back to the whole
// document when there is no summary heading.
func (m *matchers) pricingSection(lines []string) PricingSection {
	out := PricingSection{Lines: lines, Limits: m.vocab.Limits, noise: m.isPricingNoise}
	idx := FindAnchor(lines, 0, func(line string) bool {
		return summaryAnchorRe.MatchString(line) && !numberedTOCRe.MatchString(line)
	})
	if idx < 0 {
		return out
	}

	limits := m.vocab.Limits
	var section []string
	foundTotal := false
	for i := idx; i < len(lines) && i < idx+limits.SummaryLines; i++ {
		line := lines[i]
		if totalInvestRe.MatchString(line) {
			section = append(section, line)
			foundTotal = true
			continue
		}
		if i > idx+1 && m.isSummaryStop(line) {
			if !foundTotal && i < idx+limits.SummaryGrace {
				section = append(section, line)
				continue
			}
			break
		}
		section = append(section, line)
	}
	out.Lines, out.Bounded = section, true
	return out
}

func (m *matchers) isSummaryStop(line string) bool {
	if pageMarkerRe.MatchString(line) {
		return true
	}
	return m.summaryStop != nil && m.summaryStop.MatchString(line)
}
