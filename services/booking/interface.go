package booking

import (
	"context"

	"go.uber.org/zap"

	bookingRepo "github.com/Sem-Five-Project/edimy/database/repository/booking"
	slotRepo "github.com/Sem-Five-Project/edimy/database/repository/slot"
	tutorRepo "github.com/Sem-Five-Project/edimy/database/repository/tutor"
	"github.com/Sem-Five-Project/edimy/models"
)

// BookingFlowService manages a stateful booking flow from tutor selection
// through confirmation. Every session mutation goes through it.
type BookingFlowService interface {
	InitiateSession(ctx context.Context, studentID string) (*models.BookingSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error)

	SelectTutor(ctx context.Context, sessionID, tutorID string) (*models.BookingSession, error)
	SelectDate(ctx context.Context, sessionID, date string) (*models.BookingSession, error)
	SetPreferences(ctx context.Context, sessionID string, prefs models.BookingPreferences) (*models.BookingSession, error)

	ReserveSlot(ctx context.Context, sessionID, slotID string) (*models.BookingSession, error)
	ReserveMonthly(ctx context.Context, sessionID string, patterns []models.SlotPattern, anchorDate string) (*models.BookingSession, error)

	ProceedToStep(ctx context.Context, sessionID string, step models.BookingStep) (TransitionResult, *models.BookingSession, error)
	GoBack(ctx context.Context, sessionID string) (*models.BookingSession, error)

	CreatePendingBooking(ctx context.Context, sessionID string) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, sessionID, paymentID string) (*models.BookingSession, error)

	ExpireReservation(sessionID string)
	ResetSession(ctx context.Context, sessionID string) (*models.BookingSession, error)
	CancelSession(ctx context.Context, sessionID string) error
}

// MeetingCreator provisions an online classroom for a confirmed booking.
type MeetingCreator interface {
	CreateMeeting(ctx context.Context, topic, startDate string, startMinute, durationMinutes int) (*models.ZoomMeeting, error)
}

// DefaultBookingFlowService implements BookingFlowService.
type DefaultBookingFlowService struct {
	Sessions SessionStore
	Flow     *FSM
	Locks    SlotLockService
	Timers   *ReservationTimers
	Tutors   tutorRepo.TutorRepository
	Slots    slotRepo.SlotRepository
	Bookings bookingRepo.BookingRepository
	Meetings MeetingCreator
	Logger   *zap.Logger
}
