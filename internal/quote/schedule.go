package quote

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ScheduleInfo is the requested start. StartMonth always follows
// RequestedStartDate when the date is known.
type ScheduleInfo struct {
	RequestedStartDate *string
	StartMonth         *string
}

var (
	startAnchorRe = regexp.MustCompile(`(?i)requested\s+start\s+date`)
	numericDateRe = regexp.MustCompile(`([0-9]{1,2})[/-]([0-9]{1,2})[/-]([0-9]{4})`)
)

// ExtractSchedule reads the requested start date from the anchor line or the
// few lines after it. now supplies the year for dates written without one.
func (m *matchers) ExtractSchedule(lines []string, now time.Time) ScheduleInfo {
	var info ScheduleInfo

	idx := FindAnchor(lines, 0, startAnchorRe.MatchString)
	if idx < 0 {
		return info
	}
	for i := idx; i <= idx+m.vocab.Limits.ScheduleLookahead && i < len(lines); i++ {
		if d, ok := m.parseDate(lines[i], now); ok {
			return m.scheduleFor(d)
		}
	}
	if idx+1 < len(lines) {
		lower := strings.ToLower(lines[idx+1])
		for _, name := range m.vocab.MonthNames {
			if strings.Contains(lower, strings.ToLower(name)) {
				info.StartMonth = ptr(name)
				break
			}
		}
	}
	return info
}

// scheduleFor is the only constructor that sets a date, so the month can
// never disagree with it.
func (m *matchers) scheduleFor(d time.Time) ScheduleInfo {
	return ScheduleInfo{
		RequestedStartDate: ptr(d.Format(time.DateOnly)),
		StartMonth:         ptr(m.vocab.MonthNames[d.Month()-1]),
	}
}

// parseDate accepts M/D/YYYY, M-D-YYYY and "Month D[, YYYY]".
func (m *matchers) parseDate(line string, now time.Time) (time.Time, bool) {
	if sm := numericDateRe.FindStringSubmatch(line); sm != nil {
		month, _ := strconv.Atoi(sm[1])
		day, _ := strconv.Atoi(sm[2])
		year, _ := strconv.Atoi(sm[3])
		if d, ok := calendarDate(year, month, day); ok {
			return d, true
		}
	}
	if sm := m.monthName.FindStringSubmatch(line); sm != nil {
		month := 0
		for i, name := range m.vocab.MonthNames {
			if strings.EqualFold(name, sm[1]) {
				month = i + 1
				break
			}
		}
		day, _ := strconv.Atoi(sm[2])
		year := now.Year()
		if sm[3] != "" {
			year, _ = strconv.Atoi(sm[3])
		}
		if d, ok := calendarDate(year, month, day); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// calendarDate rejects values time.Date would silently normalize, such as 2/30.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}
