package constants

import "strings"

// Frequency is the human label for how often a recurring service is performed.
type Frequency string

const (
	FrequencyWeekly      Frequency = "Weekly"
	FrequencyBiWeekly    Frequency = "Bi-Weekly"
	FrequencySemiMonthly Frequency = "Semi-Monthly"
	FrequencyMonthly     Frequency = "Monthly"
	FrequencyQuarterly   Frequency = "Quarterly"
	FrequencySemiAnnual  Frequency = "Semi-Annual"
	FrequencyAnnual      Frequency = "Annual"
)

type frequencyRule struct {
	frequency Frequency
	perYear   int
	// keywords are matched against lower-cased text with separators removed.
	keywords []string
}

// Order matters: compound labels must be tested before the words they contain.
var frequencyRules = []frequencyRule{
	{FrequencyBiWeekly, 26, []string{"biweekly", "everyotherweek"}},
	{FrequencyWeekly, 52, []string{"weekly"}},
	{FrequencySemiMonthly, 24, []string{"semimonthly", "twiceamonth", "twicemonthly"}},
	{FrequencyMonthly, 12, []string{"monthly"}},
	{FrequencyQuarterly, 4, []string{"quarter"}},
	{FrequencySemiAnnual, 2, []string{"semiannual", "biannual"}},
	{FrequencyAnnual, 1, []string{"annual", "yearly"}},
}

// PerYear returns the visit count for a known label.
func (f Frequency) PerYear() (int, bool) {
	for _, r := range frequencyRules {
		if strings.EqualFold(string(r.frequency), string(f)) {
			return r.perYear, true
		}
	}
	return 0, false
}

// FrequencyForPerYear is the inverse of PerYear.
func FrequencyForPerYear(n int) (Frequency, bool) {
	for _, r := range frequencyRules {
		if r.perYear == n {
			return r.frequency, true
		}
	}
	return "", false
}

// InferFrequency reads a label such as "Semi Monthly" or "every quarter" from free text.
func InferFrequency(text string) (Frequency, bool) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(text))
	if compact == "" {
		return "", false
	}
	for _, r := range frequencyRules {
		for _, kw := range r.keywords {
			if strings.Contains(compact, kw) {
				return r.frequency, true
			}
		}
	}
	return "", false
}
