package quote

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/startpacket/internal/entity"
)

var (
	coveredPestsRe  = regexp.MustCompile(`(?i)^covered\s+pests`)
	serviceNumberRe = regexp.MustCompile(`(?i)^service\s+\d+`)
)

// ExtractCoveredPests reads the bullet or comma separated list under
// "Covered Pests". It returns nil when the document has no such section.
func (m *matchers) ExtractCoveredPests(lines []string) []string {
	idx := FindAnchor(lines, 0, coveredPestsRe.MatchString)
	if idx < 0 {
		return nil
	}
	var pests []string
	for _, line := range lines[idx+1:] {
		if serviceNumberRe.MatchString(line) || m.isHeaderStop(line) {
			break
		}
		item := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		for _, part := range splitCommaSafe(item) {
			if part = spaceRunRe.ReplaceAllString(part, " "); part != "" {
				pests = append(pests, part)
			}
		}
	}
	return dedupeFold(pests)
}

// derivePests appends the pests implied by active service signals to the
// explicit list, skipping any already present.
func (m *matchers) derivePests(explicit []string, sig Signals, eq entity.EquipmentSummary) []string {
	active := sig
	active.Rodent = active.Rodent || eq.HasTraps()
	active.ILT = active.ILT || eq.InsectLightTrapQty > 0

	pests := append([]string{}, explicit...)
	for _, rule := range m.vocab.PestRules {
		if active.Has(rule.Signal) {
			pests = append(pests, rule.Pest)
		}
	}
	return dedupeFold(pests)
}
