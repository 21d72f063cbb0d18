package booking

import (
	"time"

	"github.com/Sem-Five-Project/edimy/models"
)

const dateLayout = "2006-01-02"

// GeneratorInput bounds one expansion of weekly patterns into concrete
// occurrences. Disabled and Unavailable are optional predicates supplied by
// the caller: Disabled removes a whole date from consideration, Unavailable
// marks an occurrence as conflicting (kept, but costed at zero).
type GeneratorInput struct {
	Patterns    []models.SlotPattern
	StartDate   time.Time
	EndDate     time.Time
	Today       time.Time
	Disabled    func(date time.Time) bool
	Unavailable func(date string, w models.TimeWindow) bool
}

// MonthBounds returns the expansion range for an anchor date: the anchor
// itself through the last day of its month.
func MonthBounds(anchor time.Time) (time.Time, time.Time) {
	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	firstOfNext := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location()).AddDate(0, 1, 0)
	end := firstOfNext.AddDate(0, 0, -1)
	return start, end
}

// ExpandPatterns walks every date in [StartDate, EndDate] in order and emits
// an occurrence for each pattern window whose weekday matches. Dates before
// Today and dates failing the Disabled predicate are skipped. The walk is a
// pure function of its input, so repeated expansion yields identical output.
func ExpandPatterns(in GeneratorInput) []models.OccurrenceSlot {
	if len(in.Patterns) == 0 {
		return nil
	}

	today := time.Date(in.Today.Year(), in.Today.Month(), in.Today.Day(), 0, 0, 0, 0, in.Today.Location())

	var occurrences []models.OccurrenceSlot
	for d := in.StartDate; !d.After(in.EndDate); d = d.AddDate(0, 0, 1) {
		if d.Before(today) {
			continue
		}
		if in.Disabled != nil && in.Disabled(d) {
			continue
		}
		for _, p := range in.Patterns {
			if p.Weekday != d.Weekday() {
				continue
			}
			dateStr := d.Format(dateLayout)
			for _, w := range p.Windows {
				available := true
				if in.Unavailable != nil && in.Unavailable(dateStr, w) {
					available = false
				}
				occurrences = append(occurrences, models.OccurrenceSlot{
					Date:      dateStr,
					Weekday:   p.Weekday,
					Start:     w.Start,
					End:       w.End,
					Available: available,
				})
			}
		}
	}
	return occurrences
}

// BuildWeeklyBreakdown buckets occurrences into weeks of the range and
// totals hours and cost per bucket. A conflicting occurrence still shows in
// its bucket and still counts toward hours, but contributes zero cost.
func BuildWeeklyBreakdown(occurrences []models.OccurrenceSlot, rangeStart time.Time, hourlyRate float64) []models.WeekBreakdown {
	if len(occurrences) == 0 {
		return nil
	}

	buckets := make(map[int]*models.WeekBreakdown)
	maxIndex := 0
	for _, occ := range occurrences {
		date, err := time.ParseInLocation(dateLayout, occ.Date, rangeStart.Location())
		if err != nil {
			continue
		}
		idx := int(date.Sub(rangeStart).Hours()/24) / 7
		if idx < 0 {
			idx = 0
		}
		if idx > maxIndex {
			maxIndex = idx
		}

		week, ok := buckets[idx]
		if !ok {
			week = &models.WeekBreakdown{WeekIndex: idx}
			buckets[idx] = week
		}

		hours := float64(occ.End-occ.Start) / 60.0
		week.Slots = append(week.Slots, occ)
		week.TotalHours += hours
		if occ.Available {
			week.Cost += hours * hourlyRate
		} else {
			week.HasConflict = true
		}
	}

	weeks := make([]models.WeekBreakdown, 0, len(buckets))
	for i := 0; i <= maxIndex; i++ {
		if week, ok := buckets[i]; ok {
			weeks = append(weeks, *week)
		}
	}
	return weeks
}

// BuildMonthlyBooking expands the patterns and assembles the full monthly
// aggregate with totals. An empty pattern list yields an empty, zero-cost
// booking rather than an error.
func BuildMonthlyBooking(in GeneratorInput, hourlyRate float64) *models.MonthlyClassBooking {
	occurrences := ExpandPatterns(in)
	weeks := BuildWeeklyBreakdown(occurrences, in.StartDate, hourlyRate)

	booking := &models.MonthlyClassBooking{
		Patterns:  in.Patterns,
		Weeks:     weeks,
		Status:    models.BookingStatusPending,
		StartDate: in.StartDate.Format(dateLayout),
		EndDate:   in.EndDate.Format(dateLayout),
	}
	for _, w := range weeks {
		booking.TotalHours += w.TotalHours
		booking.TotalCost += w.Cost
	}
	return booking
}
