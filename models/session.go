package models

import "time"

// BookingStep is the position of a session within the booking flow.
type BookingStep string

const (
	StepTutorSelection BookingStep = "tutor-selection"
	StepSlotSelection  BookingStep = "slot-selection"
	StepPayment        BookingStep = "payment"
	StepConfirmation   BookingStep = "confirmation"
)

// BookingSession holds all state for one booking attempt. It lives in the
// session cache under its SessionID and is mutated only through the booking
// session service, so every transition goes through the same entry points.
type BookingSession struct {
	SessionID   string      `json:"sessionId"`
	StudentID   string      `json:"studentId"`
	CurrentStep BookingStep `json:"currentStep"`

	Tutor        *Tutor             `json:"tutor,omitempty"`
	SelectedDate string             `json:"selectedDate,omitempty"` // "2006-01-02"
	Preferences  BookingPreferences `json:"preferences"`

	// LockedSlotIDs is the authoritative ordered list of slot ids held by
	// this session: one entry on the single-booking path, many on the
	// monthly path. It must only be cleared together with (or after) a
	// server-side release attempt.
	LockedSlotIDs []string `json:"lockedSlotIds"`

	Reservation *ReservationDetails  `json:"reservation,omitempty"`
	MonthlyData *MonthlyClassBooking `json:"monthlyData,omitempty"`

	// BookingID is set only after payment confirmation succeeds; it gates
	// entry to the confirmation step.
	BookingID string `json:"bookingId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasTutor reports whether a tutor has been selected.
func (s *BookingSession) HasTutor() bool { return s.Tutor != nil }

// HasMonthlyLocks reports whether the session holds a monthly booking with
// at least one locked slot.
func (s *BookingSession) HasMonthlyLocks() bool {
	return s.MonthlyData != nil && len(s.MonthlyData.Patterns) > 0 && len(s.LockedSlotIDs) > 0
}
