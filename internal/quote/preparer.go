package quote

import (
	"regexp"
	"strings"
)

// PreparerInfo identifies the account executive who prepared the quote.
type PreparerInfo struct {
	AEName  *string
	AEEmail *string
}

var (
	preparedByRe      = regexp.MustCompile(`(?i)prepared\s+by\b`)
	preparedByLabelRe = regexp.MustCompile(`(?i)^prepared\s+by[:\s-]*`)
	customerAnchorRe  = regexp.MustCompile(`(?i)(?:tailored|prepared)\s+for`)
)

// ExtractPreparer reads the AE name and email from the "Prepared By" block.
func (m *matchers) ExtractPreparer(lines []string) PreparerInfo {
	var info PreparerInfo

	idx := FindAnchor(lines, 0, preparedByRe.MatchString)
	if idx < 0 {
		return info
	}
	stop := func(line string) bool {
		return customerAnchorRe.MatchString(line) || m.isHeaderStop(line)
	}
	block := GatherBlock(lines, idx, stop, m.vocab.Limits.PreparerBlock)
	if len(block) == 0 {
		return info
	}

	if inline := strings.TrimSpace(preparedByLabelRe.ReplaceAllString(block[0], "")); inline != "" {
		if email := firstEmail(inline); email != "" {
			info.AEEmail = ptr(email)
			inline = stripEmails(inline)
		}
		if inline != "" && !strings.Contains(inline, "@") {
			info.AEName = ptr(inline)
		}
	}

	for _, line := range block[1:] {
		if info.AEEmail == nil {
			if email := firstEmail(line); email != "" {
				info.AEEmail = ptr(email)
			}
		}
		if info.AEName == nil {
			if name := stripEmails(line); name != "" && !strings.Contains(name, "@") {
				info.AEName = ptr(name)
			}
		}
		if info.AEEmail != nil && info.AEName != nil {
			break
		}
	}
	return info
}
