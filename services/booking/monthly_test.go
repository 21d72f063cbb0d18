package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sem-Five-Project/edimy/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(date(2026, time.September, 10))
	assert.Equal(t, "2026-09-10", start.Format(dateLayout))
	assert.Equal(t, "2026-09-30", end.Format(dateLayout))

	// First of month covers the whole month.
	start, end = MonthBounds(date(2026, time.February, 1))
	assert.Equal(t, "2026-02-01", start.Format(dateLayout))
	assert.Equal(t, "2026-02-28", end.Format(dateLayout))
}

func TestExpandPatternsMidMonthAnchor(t *testing.T) {
	// Anchored on 2026-09-10, the remaining Tuesdays are the 15th, 22nd
	// and 29th.
	start, end := MonthBounds(date(2026, time.September, 10))
	in := GeneratorInput{
		Patterns: []models.SlotPattern{
			{Weekday: time.Tuesday, Windows: []models.TimeWindow{{Start: 960, End: 1020}}},
		},
		StartDate: start,
		EndDate:   end,
		Today:     date(2026, time.September, 1),
	}

	occ := ExpandPatterns(in)
	require.Len(t, occ, 3)
	assert.Equal(t, "2026-09-15", occ[0].Date)
	assert.Equal(t, "2026-09-22", occ[1].Date)
	assert.Equal(t, "2026-09-29", occ[2].Date)
	for _, o := range occ {
		assert.Equal(t, time.Tuesday, o.Weekday)
		assert.Equal(t, 960, o.Start)
		assert.Equal(t, 1020, o.End)
		assert.True(t, o.Available)
	}
}

func TestExpandPatternsSkipsPastAndDisabledDates(t *testing.T) {
	start, end := MonthBounds(date(2026, time.September, 1))
	in := GeneratorInput{
		Patterns: []models.SlotPattern{
			{Weekday: time.Tuesday, Windows: []models.TimeWindow{{Start: 600, End: 660}}},
		},
		StartDate: start,
		EndDate:   end,
		// Mid-month "today" removes the 1st and 8th.
		Today: date(2026, time.September, 14),
		Disabled: func(d time.Time) bool {
			return d.Format(dateLayout) == "2026-09-22"
		},
	}

	occ := ExpandPatterns(in)
	require.Len(t, occ, 2)
	assert.Equal(t, "2026-09-15", occ[0].Date)
	assert.Equal(t, "2026-09-29", occ[1].Date)
}

func TestExpandPatternsDeterministic(t *testing.T) {
	start, end := MonthBounds(date(2026, time.September, 1))
	in := GeneratorInput{
		Patterns: []models.SlotPattern{
			{Weekday: time.Monday, Windows: []models.TimeWindow{{Start: 540, End: 600}, {Start: 960, End: 1080}}},
			{Weekday: time.Thursday, Windows: []models.TimeWindow{{Start: 600, End: 660}}},
		},
		StartDate: start,
		EndDate:   end,
		Today:     date(2026, time.September, 1),
	}

	first := ExpandPatterns(in)
	second := ExpandPatterns(in)
	assert.Equal(t, first, second, "expansion must be a pure function of its input")

	// Occurrences come out in date order.
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].Date, first[i].Date)
	}
}

func TestExpandPatternsEmpty(t *testing.T) {
	assert.Nil(t, ExpandPatterns(GeneratorInput{}))
}

func TestBuildWeeklyBreakdownBucketsAndConflicts(t *testing.T) {
	start, end := MonthBounds(date(2026, time.September, 10))
	in := GeneratorInput{
		Patterns: []models.SlotPattern{
			{Weekday: time.Tuesday, Windows: []models.TimeWindow{{Start: 960, End: 1020}}},
		},
		StartDate: start,
		EndDate:   end,
		Today:     date(2026, time.September, 1),
		// The 22nd clashes with an existing booking.
		Unavailable: func(d string, w models.TimeWindow) bool {
			return d == "2026-09-22"
		},
	}

	occ := ExpandPatterns(in)
	weeks := BuildWeeklyBreakdown(occ, start, 2000)
	require.Len(t, weeks, 3)

	// 15th: week 0, one hour, costed.
	assert.Equal(t, 0, weeks[0].WeekIndex)
	assert.InDelta(t, 1.0, weeks[0].TotalHours, 1e-9)
	assert.InDelta(t, 2000.0, weeks[0].Cost, 1e-9)
	assert.False(t, weeks[0].HasConflict)

	// 22nd: week 1, conflicting, hours counted but zero cost.
	assert.Equal(t, 1, weeks[1].WeekIndex)
	assert.InDelta(t, 1.0, weeks[1].TotalHours, 1e-9)
	assert.Zero(t, weeks[1].Cost)
	assert.True(t, weeks[1].HasConflict)

	// 29th: week 2, costed.
	assert.Equal(t, 2, weeks[2].WeekIndex)
	assert.InDelta(t, 2000.0, weeks[2].Cost, 1e-9)
}

func TestBuildMonthlyBookingTotals(t *testing.T) {
	start, end := MonthBounds(date(2026, time.September, 10))
	in := GeneratorInput{
		Patterns: []models.SlotPattern{
			{Weekday: time.Tuesday, Windows: []models.TimeWindow{{Start: 960, End: 1020}}},
		},
		StartDate: start,
		EndDate:   end,
		Today:     date(2026, time.September, 1),
		Unavailable: func(d string, w models.TimeWindow) bool {
			return d == "2026-09-22"
		},
	}

	booking := BuildMonthlyBooking(in, 2000)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, "2026-09-10", booking.StartDate)
	assert.Equal(t, "2026-09-30", booking.EndDate)
	assert.InDelta(t, 3.0, booking.TotalHours, 1e-9)
	assert.InDelta(t, 4000.0, booking.TotalCost, 1e-9, "conflicting week contributes zero")
}

func TestBuildMonthlyBookingEmptyPatterns(t *testing.T) {
	start, end := MonthBounds(date(2026, time.September, 1))
	booking := BuildMonthlyBooking(GeneratorInput{StartDate: start, EndDate: end}, 2000)
	assert.Empty(t, booking.Weeks)
	assert.Zero(t, booking.TotalCost)
	assert.Zero(t, booking.TotalHours)
}
