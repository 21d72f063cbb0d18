package models

import "time"

// Slot lifecycle statuses. A slot moves AVAILABLE -> IN_PROGRESS while a
// student holds a reservation lock on it, then to BOOKED on confirmation
// or back to AVAILABLE when the lock is released or expires.
const (
	SlotStatusAvailable  = "AVAILABLE"
	SlotStatusBooked     = "BOOKED"
	SlotStatusInProgress = "IN_PROGRESS"
)

// TimeSlot is a single bookable unit tied to one tutor.
// Start and End are minutes from midnight on Date (e.g. 960 for 4:00 PM).
type TimeSlot struct {
	ID         string     `bson:"id" json:"id"`
	TutorID    string     `bson:"tutorId" json:"tutorId"`
	Date       string     `bson:"date" json:"date"` // "2006-01-02"
	Start      int        `bson:"start" json:"start"`
	End        int        `bson:"end" json:"end"`
	Status     string     `bson:"status" json:"status"`
	LockExpiry *time.Time `bson:"lockExpiry,omitempty" json:"lockExpiry,omitempty"`
	LockedBy   string     `bson:"lockedBy,omitempty" json:"lockedBy,omitempty"` // session id holding the lock
	BookingID  string     `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Version    int        `bson:"version" json:"version"`
}

// DurationHours returns the slot length in hours.
func (s *TimeSlot) DurationHours() float64 {
	return float64(s.End-s.Start) / 60.0
}

// ReservationDetails is the client-visible handle for a held slot lock.
// It is created when a reserve succeeds and destroyed on expiry, explicit
// back-navigation, or successful payment.
type ReservationDetails struct {
	ReservationSlotID string    `json:"reservationSlotId"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

// Expired reports whether the reservation's hold has lapsed at the given time.
func (r *ReservationDetails) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
