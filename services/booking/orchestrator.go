package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sem-Five-Project/edimy/models"
)

// InitiateSession creates a new booking session at the tutor-selection step.
func (s *DefaultBookingFlowService) InitiateSession(ctx context.Context, studentID string) (*models.BookingSession, error) {
	session := &models.BookingSession{
		SessionID:     uuid.New().String(),
		StudentID:     studentID,
		CurrentStep:   models.StepTutorSelection,
		LockedSlotIDs: []string{},
		CreatedAt:     time.Now(),
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.Logger.Info("booking session initiated",
		zap.String("sessionId", session.SessionID), zap.String("studentId", studentID))
	return session, nil
}

// GetSession loads a session by id.
func (s *DefaultBookingFlowService) GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	return s.Sessions.Load(ctx, sessionID)
}

// SelectTutor pins the tutor for this booking attempt and moves the flow to
// slot selection. The tutor is immutable for the rest of the attempt.
func (s *DefaultBookingFlowService) SelectTutor(ctx context.Context, sessionID, tutorID string) (*models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tutor, err := s.Tutors.GetByID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tutor %s: %w", tutorID, err)
	}
	session.Tutor = tutor

	if res := s.Flow.CanProceed(session, models.StepSlotSelection); res.Allowed {
		session.CurrentStep = models.StepSlotSelection
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectDate records the chosen date during slot selection.
func (s *DefaultBookingFlowService) SelectDate(ctx context.Context, sessionID, date string) (*models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, NewTransitionError(fmt.Sprintf("invalid date %q", date))
	}
	session.SelectedDate = date
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetPreferences updates subject, language, and class type. Preferences
// stay mutable through slot-selection and payment; the final price is
// frozen by ConfirmPayment.
func (s *DefaultBookingFlowService) SetPreferences(ctx context.Context, sessionID string, prefs models.BookingPreferences) (*models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStep == models.StepConfirmation {
		return nil, NewTransitionError("preferences are frozen at confirmation")
	}
	if session.Tutor != nil && prefs.Subject != "" {
		if _, ok := session.Tutor.SubjectRate(prefs.Subject); !ok {
			return nil, NewTransitionError(fmt.Sprintf("tutor does not offer subject %q", prefs.Subject))
		}
	}
	if session.Tutor != nil && prefs.Language != "" && !session.Tutor.TeachesLanguage(prefs.Language) {
		return nil, NewTransitionError(fmt.Sprintf("tutor does not teach in %q", prefs.Language))
	}

	prefs.FinalPrice = session.Preferences.FinalPrice
	session.Preferences = prefs
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ReserveSlot places a lock on a single slot (one-time booking path), arms
// the reservation countdown, and records the authoritative lock list.
func (s *DefaultBookingFlowService) ReserveSlot(ctx context.Context, sessionID, slotID string) (*models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStep != models.StepSlotSelection {
		return nil, NewTransitionError("slots can only be reserved during slot selection")
	}

	// Replacing an existing reservation first returns the old slot. The
	// cleared lock state is persisted before the new attempt so the stored
	// session never claims a lock the server no longer holds.
	if len(session.LockedSlotIDs) > 0 {
		s.releaseHeldSlots(ctx, session)
		if err := s.Sessions.Save(ctx, session); err != nil {
			return nil, err
		}
	}

	reservation, err := s.Locks.ReserveSlot(ctx, sessionID, slotID)
	if err != nil {
		return nil, err
	}

	session.LockedSlotIDs = []string{slotID}
	session.Reservation = reservation
	session.MonthlyData = nil
	if err := s.Sessions.Save(ctx, session); err != nil {
		// The lock is held server-side but the session lost it; undo.
		if relErr := s.Locks.ReleaseSlots(ctx, []string{slotID}); relErr != nil {
			s.Logger.Warn("failed to release slot after save failure",
				zap.String("slotId", slotID), zap.Error(relErr))
		}
		return nil, err
	}

	s.armReservationTimer(session)
	return session, nil
}

// ReserveMonthly expands the weekly patterns over the anchor's month,
// matches occurrences against the tutor's concrete slots, and locks every
// matching available slot under a single reservation.
func (s *DefaultBookingFlowService) ReserveMonthly(ctx context.Context, sessionID string, patterns []models.SlotPattern, anchorDate string) (*models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStep != models.StepSlotSelection {
		return nil, NewTransitionError("slots can only be reserved during slot selection")
	}
	if !session.HasTutor() {
		return nil, NewTransitionError("no tutor selected")
	}

	anchor, err := time.Parse(dateLayout, anchorDate)
	if err != nil {
		return nil, NewTransitionError(fmt.Sprintf("invalid anchor date %q", anchorDate))
	}

	start, end := MonthBounds(anchor)
	tutorSlots, err := s.Slots.GetByTutorAndRange(ctx, session.Tutor.ID, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to load tutor slots: %w", err)
	}

	// Index the tutor's concrete slots by (date, window) for matching.
	type slotKey struct {
		date       string
		start, end int
	}
	byWindow := make(map[slotKey]models.TimeSlot, len(tutorSlots))
	for _, ts := range tutorSlots {
		byWindow[slotKey{ts.Date, ts.Start, ts.End}] = ts
	}

	hourlyRate, _ := session.Tutor.SubjectRate(session.Preferences.Subject)
	monthly := BuildMonthlyBooking(GeneratorInput{
		Patterns:  patterns,
		StartDate: start,
		EndDate:   end,
		Today:     time.Now(),
		Unavailable: func(date string, w models.TimeWindow) bool {
			ts, ok := byWindow[slotKey{date, w.Start, w.End}]
			return !ok || ts.Status != models.SlotStatusAvailable
		},
	}, hourlyRate)

	var slotIDs []string
	for _, week := range monthly.Weeks {
		for _, occ := range week.Slots {
			if !occ.Available {
				continue
			}
			if ts, ok := byWindow[slotKey{occ.Date, occ.Start, occ.End}]; ok {
				slotIDs = append(slotIDs, ts.ID)
			}
		}
	}
	if len(slotIDs) == 0 {
		return nil, NewSlotLockError("no available slots match the requested patterns")
	}

	if len(session.LockedSlotIDs) > 0 {
		s.releaseHeldSlots(ctx, session)
		if err := s.Sessions.Save(ctx, session); err != nil {
			return nil, err
		}
	}

	reservation, err := s.Locks.ReserveSlots(ctx, sessionID, slotIDs)
	if err != nil {
		return nil, err
	}

	for wi := range monthly.Weeks {
		for si := range monthly.Weeks[wi].Slots {
			if monthly.Weeks[wi].Slots[si].Available {
				monthly.Weeks[wi].Slots[si].Locked = true
			}
		}
	}

	session.LockedSlotIDs = slotIDs
	session.Reservation = reservation
	session.MonthlyData = monthly
	if err := s.Sessions.Save(ctx, session); err != nil {
		if relErr := s.Locks.ReleaseSlots(ctx, slotIDs); relErr != nil {
			s.Logger.Warn("failed to release slots after save failure", zap.Error(relErr))
		}
		return nil, err
	}

	s.armReservationTimer(session)
	return session, nil
}

// ProceedToStep attempts a guarded forward transition. A blocked transition
// is reported back to the caller with its reason; the session is unchanged.
func (s *DefaultBookingFlowService) ProceedToStep(ctx context.Context, sessionID string, step models.BookingStep) (TransitionResult, *models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return TransitionResult{}, nil, err
	}

	res := s.Flow.CanProceed(session, step)
	if !res.Allowed {
		s.Logger.Debug("transition blocked",
			zap.String("sessionId", sessionID),
			zap.String("to", string(step)),
			zap.String("reason", res.Reason))
		return res, session, nil
	}

	session.CurrentStep = step
	if err := s.Sessions.Save(ctx, session); err != nil {
		return TransitionResult{}, nil, err
	}
	return res, session, nil
}

// GoBack follows the back edge for the current step, running its
// compensating action first. Leaving payment releases every held slot;
// the release is best-effort and local lock state is cleared regardless,
// so a failed release can never strand the flow.
func (s *DefaultBookingFlowService) GoBack(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	edge, ok := s.Flow.BackEdgeFrom(session.CurrentStep)
	if !ok {
		return session, nil
	}

	if edge.ReleaseLocks {
		s.releaseHeldSlots(ctx, session)
	}

	session.CurrentStep = edge.To
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CreatePendingBooking materializes a PENDING booking record for the
// session once the payment step is reached. Its id becomes the payment
// provider's order id.
func (s *DefaultBookingFlowService) CreatePendingBooking(ctx context.Context, sessionID string) (*models.Booking, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStep != models.StepPayment {
		return nil, NewTransitionError("payment can only start from the payment step")
	}

	price, err := s.priceSession(ctx, session)
	if err != nil {
		return nil, err
	}

	record := &models.Booking{
		SessionID:  session.SessionID,
		StudentID:  session.StudentID,
		TutorID:    session.Tutor.ID,
		SlotIDs:    append([]string(nil), session.LockedSlotIDs...),
		Subject:    session.Preferences.Subject,
		Language:   session.Preferences.Language,
		ClassType:  session.Preferences.ClassType,
		TotalPrice: price,
		Status:     models.BookingStatusPending,
	}
	if err := s.Bookings.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create pending booking: %w", err)
	}

	session.Preferences.FinalPrice = price
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return record, nil
}

// ConfirmPayment finalizes the flow after the payment provider reports
// success: slots flip to BOOKED, the reservation countdown is disarmed, the
// booking id unlocks the confirmation step, and preferences freeze.
func (s *DefaultBookingFlowService) ConfirmPayment(ctx context.Context, sessionID, paymentID string) (*models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.Bookings.GetByStudent(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	var record *models.Booking
	for i := range bookings {
		if bookings[i].SessionID == sessionID && bookings[i].Status == models.BookingStatusPending {
			record = &bookings[i]
			break
		}
	}
	if record == nil {
		return nil, NewPaymentError("no pending booking for session")
	}

	for _, slotID := range session.LockedSlotIDs {
		if err := s.Slots.MarkBooked(ctx, slotID, sessionID, record.ID); err != nil {
			return nil, fmt.Errorf("failed to mark slot %s booked: %w", slotID, err)
		}
	}

	if err := s.Bookings.UpdateStatus(ctx, record.ID, models.BookingStatusConfirmed); err != nil {
		return nil, err
	}
	if err := s.Bookings.SetPaymentID(ctx, record.ID, paymentID); err != nil {
		s.Logger.Warn("failed to record payment id", zap.String("bookingId", record.ID), zap.Error(err))
	}

	s.Timers.Disarm(sessionID)
	s.attachMeeting(ctx, session, record)

	session.BookingID = record.ID
	session.Reservation = nil
	if session.MonthlyData != nil {
		session.MonthlyData.Status = models.BookingStatusConfirmed
	}
	session.CurrentStep = models.StepConfirmation
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.Logger.Info("booking confirmed",
		zap.String("sessionId", sessionID), zap.String("bookingId", record.ID))
	return session, nil
}

// ExpireReservation is the single hard-expiry path, invoked by the
// in-process timer and by the deferred release worker. It releases the held
// slots server-side, clears the reservation, and rewinds the flow to slot
// selection. Expiry is a normal transition, not an error.
//
// A reservation that has not reached its expiresAt is left alone: deferred
// tasks scheduled for a hold that was since released or replaced would
// otherwise kill the replacement.
func (s *DefaultBookingFlowService) ExpireReservation(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		if err != ErrSessionNotFound {
			s.Logger.Warn("expiry: failed to load session", zap.String("sessionId", sessionID), zap.Error(err))
		}
		return
	}
	if session.Reservation == nil || !session.Reservation.Expired(time.Now()) {
		return
	}

	s.releaseHeldSlots(ctx, session)
	if session.CurrentStep != models.StepConfirmation {
		session.CurrentStep = models.StepSlotSelection
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		s.Logger.Warn("expiry: failed to save session", zap.String("sessionId", sessionID), zap.Error(err))
		return
	}
	s.Logger.Info("reservation expired", zap.String("sessionId", sessionID))
}

// ResetSession unconditionally clears tutor, date, preferences,
// reservation, booking id, monthly data, and locked slots, rewinding to
// tutor-selection. Held locks are released first. Idempotent.
func (s *DefaultBookingFlowService) ResetSession(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.releaseHeldSlots(ctx, session)

	session.Tutor = nil
	session.SelectedDate = ""
	session.Preferences = models.BookingPreferences{}
	session.BookingID = ""
	session.MonthlyData = nil
	session.CurrentStep = models.StepTutorSelection
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CancelSession releases any held locks and removes the session entirely.
func (s *DefaultBookingFlowService) CancelSession(ctx context.Context, sessionID string) error {
	session, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		if err == ErrSessionNotFound {
			return nil
		}
		return err
	}
	s.releaseHeldSlots(ctx, session)
	return s.Sessions.Delete(ctx, sessionID)
}

// releaseHeldSlots clears the session's lock state after a best-effort
// server release. Failures are logged, never propagated: local state must
// not stay pinned to locks the server may already have reclaimed.
func (s *DefaultBookingFlowService) releaseHeldSlots(ctx context.Context, session *models.BookingSession) {
	if len(session.LockedSlotIDs) > 0 {
		if err := s.Locks.ReleaseSlots(ctx, session.LockedSlotIDs); err != nil {
			s.Logger.Warn("best-effort slot release failed",
				zap.String("sessionId", session.SessionID), zap.Error(err))
		}
	}
	session.LockedSlotIDs = []string{}
	session.Reservation = nil
	s.Timers.Disarm(session.SessionID)
}

func (s *DefaultBookingFlowService) armReservationTimer(session *models.BookingSession) {
	if session.Reservation == nil {
		return
	}
	sessionID := session.SessionID
	s.Timers.Arm(sessionID, session.Reservation.ExpiresAt, func() {
		s.ExpireReservation(sessionID)
	})
}

// priceSession computes the amount to charge for the session's current
// selection: the monthly aggregate when present, otherwise the single
// locked slot's duration.
func (s *DefaultBookingFlowService) priceSession(ctx context.Context, session *models.BookingSession) (float64, error) {
	rate, ok := session.Tutor.SubjectRate(session.Preferences.Subject)
	if !ok {
		return 0, NewTransitionError(fmt.Sprintf("tutor does not offer subject %q", session.Preferences.Subject))
	}

	if session.MonthlyData != nil {
		return CalculateMonthlyPrice(session.MonthlyData, session.Preferences.ClassType), nil
	}

	if len(session.LockedSlotIDs) != 1 {
		return 0, NewTransitionError("no reserved slot to price")
	}
	slot, err := s.Slots.GetByID(ctx, session.LockedSlotIDs[0])
	if err != nil {
		return 0, fmt.Errorf("failed to load reserved slot: %w", err)
	}
	return CalculateSessionPrice(rate, slot.DurationHours(), session.Preferences.ClassType), nil
}

func (s *DefaultBookingFlowService) attachMeeting(ctx context.Context, session *models.BookingSession, record *models.Booking) {
	if s.Meetings == nil || len(session.LockedSlotIDs) == 0 {
		return
	}
	slot, err := s.Slots.GetByID(ctx, session.LockedSlotIDs[0])
	if err != nil {
		s.Logger.Warn("meeting: failed to load slot", zap.Error(err))
		return
	}
	topic := fmt.Sprintf("%s class with %s", record.Subject, session.Tutor.Name)
	meeting, err := s.Meetings.CreateMeeting(ctx, topic, slot.Date, slot.Start, slot.End-slot.Start)
	if err != nil {
		// The booking stands; the link can be provisioned later.
		s.Logger.Warn("meeting creation failed", zap.String("bookingId", record.ID), zap.Error(err))
		return
	}
	if err := s.Bookings.SetMeetingLink(ctx, record.ID, meeting.JoinURL); err != nil {
		s.Logger.Warn("failed to store meeting link", zap.String("bookingId", record.ID), zap.Error(err))
	}
}
