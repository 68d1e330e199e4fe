package quote

import (
	"regexp"
	"strings"
	"unicode"
)

// HeaderInfo is the customer block at the top of a quote.
type HeaderInfo struct {
	AccountName         *string
	ContactName         *string
	ContactEmail        *string
	ServiceAddressLine1 *string
	ServiceCity         *string
	ServiceState        *string
	ServiceZip          *string
}

var (
	headerLabelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:tailor(?:ed)?|taylor)\s*(?:for|4)\b`),
		regexp.MustCompile(`(?i)^prepared\s+for\b`),
		regexp.MustCompile(`(?i)^account\s+name\b`),
		regexp.MustCompile(`(?i)^customer\s+name\b`),
	}
	labelPunctRe       = regexp.MustCompile(`^[:\s,-]+`)
	accountAnchorRe    = regexp.MustCompile(`(?i)account\s+name|customer\s+name`)
	trailingPageNumRe  = regexp.MustCompile(`\s+\d{1,2}\s*$`)
	trailingStateZipRe = regexp.MustCompile(`([A-Z]{2})[,\s]*([0-9]{5})(?:-?[0-9]{4})?\s*$`)
)

// isHeaderAnchor matches "Tailored For", "Taylor 4", "Prepared For",
// "Account Name" and "Customer Name" style labels.
func (m *matchers) isHeaderAnchor(line string) bool {
	norm := normalizeLabel(line)
	for _, a := range m.vocab.HeaderAnchors {
		if strings.HasPrefix(norm, a) {
			return true
		}
	}
	return accountAnchorRe.MatchString(line)
}

// ExtractHeader reads account, contact and service address from the block
// following the first "tailored for" style anchor.
func (m *matchers) ExtractHeader(lines []string) HeaderInfo {
	var info HeaderInfo

	idx := FindAnchor(lines, 0, m.isHeaderAnchor)
	if idx < 0 {
		return info
	}
	block := m.sanitizeHeaderBlock(GatherBlock(lines, idx, m.isHeaderStop, m.vocab.Limits.HeaderBlock))
	if len(block) == 0 {
		return info
	}

	for _, line := range block {
		if email := firstEmail(line); email != "" {
			info.ContactEmail = &email
			break
		}
	}
	cleaned := make([]string, 0, len(block))
	for _, line := range block {
		if line = stripEmails(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}

	var expanded []string
	for _, line := range cleaned {
		expanded = append(expanded, m.splitMergedHeaderLine(line)...)
	}

	cursor := 0
	for ; cursor < len(expanded); cursor++ {
		if m.looksLikeAccountName(expanded[cursor]) {
			info.AccountName = ptr(expanded[cursor])
			cursor++
			break
		}
	}
	for ; cursor < len(expanded); cursor++ {
		if m.looksLikeContactName(expanded[cursor]) {
			info.ContactName = ptr(expanded[cursor])
			break
		}
	}

	m.fillAddress(&info, expanded)
	return info
}

func (m *matchers) sanitizeHeaderBlock(block []string) []string {
	out := make([]string, 0, len(block))
	for _, line := range block {
		cleaned := stripHeaderLabel(line)
		switch {
		case cleaned == "":
		case m.isHeaderStop(cleaned):
		case pageMarkerRe.MatchString(cleaned):
		case urlRe.MatchString(cleaned):
		case digitsOnlyRe.MatchString(cleaned):
		default:
			out = append(out, cleaned)
		}
	}
	return out
}

func stripHeaderLabel(line string) string {
	line = strings.TrimSpace(line)
	for _, re := range headerLabelPatterns {
		if loc := re.FindStringIndex(line); loc != nil {
			line = strings.TrimSpace(line[loc[1]:])
			break
		}
	}
	return labelPunctRe.ReplaceAllString(line, "")
}

func (m *matchers) isAddressLike(s string) bool {
	return m.addressLine.MatchString(s) || cityStateZipRe.MatchString(s)
}

// splitMergedHeaderLine separates an account name, a person name and a
// trailing address that PDF extraction collapsed onto one line.
func (m *matchers) splitMergedHeaderLine(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if m.isAddressLike(line) {
		return []string{line}
	}
	if first := strings.IndexFunc(line, unicode.IsDigit); first > 0 {
		var out []string
		if before := strings.TrimSpace(line[:first]); before != "" {
			out = append(out, m.splitAccountAndContact(before)...)
		}
		if after := strings.TrimSpace(line[first:]); after != "" {
			out = append(out, after)
		}
		return out
	}
	return m.splitAccountAndContact(line)
}

// splitAccountAndContact splits at the earliest token boundary where the
// remainder reads as a person name.
func (m *matchers) splitAccountAndContact(text string) []string {
	if m.isAddressLike(text) {
		return []string{text}
	}
	tokens := strings.Fields(text)
	if len(tokens) < 3 {
		return []string{text}
	}
	for split := 1; split <= len(tokens)-2; split++ {
		contact := strings.Join(tokens[split:], " ")
		if m.looksLikeContactName(contact) {
			return []string{strings.Join(tokens[:split], " "), contact}
		}
	}
	return []string{text}
}

func (m *matchers) looksLikeAccountName(s string) bool {
	if s == "" || strings.Contains(s, "@") {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return false
	}
	return len([]rune(s)) <= m.vocab.Limits.AccountNameMax
}

// looksLikeContactName accepts 2 to 5 tokens starting with a letter, with no
// digits, no email and no business words such as "Corp" or "LLC".
func (m *matchers) looksLikeContactName(s string) bool {
	if s == "" || strings.Contains(s, "@") || strings.ContainsFunc(s, unicode.IsDigit) {
		return false
	}
	tokens := strings.Fields(s)
	if len(tokens) < 2 || len(tokens) > 5 {
		return false
	}
	first := []rune(tokens[0])[0]
	if !(first >= 'A' && first <= 'Z' || first >= 'a' && first <= 'z') {
		return false
	}
	for _, t := range tokens {
		word := strings.ToLower(strings.Trim(t, ".,;:"))
		if _, ok := m.companyWords[word]; ok {
			return false
		}
	}
	return true
}

// fillAddress uses the first numbered street line, completing city, state
// and zip from the same line or from the line after it.
func (m *matchers) fillAddress(info *HeaderInfo, lines []string) {
	for i, line := range lines {
		if !m.addressLine.MatchString(line) {
			continue
		}
		if addr, ok := m.splitInlineAddress(line); ok {
			info.ServiceAddressLine1 = ptr(addr.street)
			info.ServiceCity = strPtr(addr.city)
			info.ServiceState = ptr(addr.state)
			info.ServiceZip = ptr(addr.zip)
			return
		}
		info.ServiceAddressLine1 = ptr(line)
		if i+1 < len(lines) {
			if cm := cityStateZipRe.FindStringSubmatch(lines[i+1]); cm != nil {
				info.ServiceCity = ptr(strings.TrimSpace(cm[1]))
				info.ServiceState = ptr(cm[2])
				info.ServiceZip = ptr(cm[3])
			}
		}
		return
	}
}

type inlineAddress struct {
	street, city, state, zip string
}

// splitInlineAddress handles "123 Main Street Houston, TX 77002" on one line.
// The city boundary is taken after the last street suffix, else the last
// comma, else the last token.
func (m *matchers) splitInlineAddress(line string) (inlineAddress, bool) {
	cleaned := strings.TrimSpace(trailingPageNumRe.ReplaceAllString(line, ""))
	loc := trailingStateZipRe.FindStringSubmatchIndex(cleaned)
	if loc == nil {
		return inlineAddress{}, false
	}
	addr := inlineAddress{
		state: cleaned[loc[2]:loc[3]],
		zip:   cleaned[loc[4]:loc[5]],
	}
	before := strings.TrimRight(strings.TrimSpace(cleaned[:loc[0]]), ", \t")
	addr.street = before

	if all := m.streetSuffix.FindAllStringIndex(before, -1); len(all) > 0 {
		end := all[len(all)-1][1]
		city := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(before[end:]), ","))
		if city != "" {
			addr.city = city
			addr.street = strings.TrimSpace(before[:end])
		}
	}
	if addr.city == "" {
		if comma := strings.LastIndex(before, ","); comma >= 0 {
			addr.city = strings.TrimSpace(before[comma+1:])
			addr.street = strings.TrimSpace(before[:comma])
		}
	}
	if addr.city == "" {
		if tokens := strings.Fields(before); len(tokens) >= 2 {
			addr.city = tokens[len(tokens)-1]
			addr.street = strings.Join(tokens[:len(tokens)-1], " ")
		}
	}
	if addr.street == "" {
		addr.street = before
	}
	return addr, true
}
