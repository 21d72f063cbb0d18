package models

import "time"

// SlotPattern is one weekly recurrence rule: a weekday plus one or more
// time windows on that day (minutes from midnight).
type SlotPattern struct {
	Weekday time.Weekday `json:"weekday"`
	Windows []TimeWindow `json:"windows"`
}

// TimeWindow is a start/end pair in minutes from midnight.
type TimeWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Hours returns the window length in hours.
func (w TimeWindow) Hours() float64 { return float64(w.End-w.Start) / 60.0 }

// OccurrenceSlot is a concrete calendar occurrence expanded from a pattern.
type OccurrenceSlot struct {
	Date      string       `json:"date"` // "2006-01-02"
	Weekday   time.Weekday `json:"weekday"`
	Start     int          `json:"start"`
	End       int          `json:"end"`
	Available bool         `json:"available"`
	Locked    bool         `json:"locked"`
}

// WeekBreakdown aggregates the occurrences falling into one week of the
// booking range. A conflicting occurrence (unavailable or already booked)
// still appears in Slots but contributes zero to Cost.
type WeekBreakdown struct {
	WeekIndex   int              `json:"weekIndex"`
	Slots       []OccurrenceSlot `json:"slots"`
	TotalHours  float64          `json:"totalHours"`
	Cost        float64          `json:"cost"`
	HasConflict bool             `json:"hasConflict"`
}

// MonthlyClassBooking aggregates a full weekly-recurrence booking: the
// patterns, the week-by-week breakdown, and overall totals and bounds.
type MonthlyClassBooking struct {
	Patterns   []SlotPattern   `json:"patterns"`
	Weeks      []WeekBreakdown `json:"weeks"`
	TotalHours float64         `json:"totalHours"`
	TotalCost  float64         `json:"totalCost"`
	Status     string          `json:"status"` // PENDING, CONFIRMED, CANCELLED
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
}
