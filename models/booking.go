package models

import "time"

// Class types supported by the booking flow, each with its own pricing
// multiplier applied over the subject hourly rate.
const (
	ClassTypeOneTime = "one-time"
	ClassTypeWeekly  = "weekly"
	ClassTypeMonthly = "monthly"
)

// Booking statuses.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
	BookingStatusFailed    = "FAILED"
	BookingStatusRefunded  = "REFUNDED"
)

// BookingPreferences are the user's choices made during slot selection.
// They stay mutable through the payment step and are frozen at confirmation.
type BookingPreferences struct {
	Subject    string  `json:"subject"`
	Language   string  `json:"language,omitempty"`
	ClassType  string  `json:"classType"`
	FinalPrice float64 `json:"finalPrice"`
}

// Booking is the persisted booking record produced by a confirmed flow.
type Booking struct {
	ID          string    `bson:"id" json:"id"`
	SessionID   string    `bson:"sessionId,omitempty" json:"-"`
	StudentID   string    `bson:"studentId" json:"studentId"`
	TutorID     string    `bson:"tutorId" json:"tutorId"`
	SlotIDs     []string  `bson:"slotIds" json:"slotIds"`
	Subject     string    `bson:"subject" json:"subject"`
	Language    string    `bson:"language,omitempty" json:"language,omitempty"`
	ClassType   string    `bson:"classType" json:"classType"`
	TotalPrice  float64   `bson:"totalPrice" json:"totalPrice"`
	Currency    string    `bson:"currency" json:"currency"`
	Status      string    `bson:"status" json:"status"`
	MeetingLink string    `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	PaymentID   string    `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
