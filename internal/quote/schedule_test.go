package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractSchedule(t *testing.T) {
	m := newMatchers(t)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		lines     []string
		wantDate  *string
		wantMonth *string
	}{
		{"numeric on next line", []string{"Requested Start Date", "4/1/2025"}, ptr("2025-04-01"), ptr("April")},
		{"dashed inline", []string{"Requested Start Date: 12-15-2025"}, ptr("2025-12-15"), ptr("December")},
		{"month name takes clock year", []string{"Requested Start Date", "June 5"}, ptr("2025-06-05"), ptr("June")},
		{"month name with year", []string{"Requested Start Date", "notes", "January 7, 2026"}, ptr("2026-01-07"), ptr("January")},
		{"month only", []string{"Requested Start Date", "Sometime in September"}, nil, ptr("September")},
		{"impossible date", []string{"Requested Start Date", "2/30/2025"}, nil, nil},
		{"beyond lookahead", []string{"Requested Start Date", "a", "b", "c", "4/1/2025"}, nil, nil},
		{"no anchor", []string{"4/1/2025"}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ExtractSchedule(tt.lines, now)
			assert.Equal(t, tt.wantDate, got.RequestedStartDate)
			assert.Equal(t, tt.wantMonth, got.StartMonth)
		})
	}
}

func TestExtractSchedule_MonthAlwaysMatchesDate(t *testing.T) {
	m := newMatchers(t)
	now := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	for month := 1; month <= 12; month++ {
		d := time.Date(2025, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		got := m.ExtractSchedule([]string{"Requested Start Date " + d.Format("1/2/2006")}, now)
		if assert.NotNil(t, got.RequestedStartDate) {
			parsed, err := time.Parse(time.DateOnly, *got.RequestedStartDate)
			assert.NoError(t, err)
			assert.Equal(t, parsed.Month().String(), val(t, got.StartMonth))
		}
	}
}

func TestCalendarDate(t *testing.T) {
	_, ok := calendarDate(2024, 2, 29)
	assert.True(t, ok)
	_, ok = calendarDate(2025, 2, 29)
	assert.False(t, ok)
	_, ok = calendarDate(2025, 13, 1)
	assert.False(t, ok)
	_, ok = calendarDate(2025, 1, 0)
	assert.False(t, ok)
}
