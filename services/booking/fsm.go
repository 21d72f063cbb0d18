// Package booking implements the booking flow: an explicit state machine
// over the booking steps, slot reservation locks with expiry, and the
// monthly recurrence expansion.
package booking

import (
	"github.com/Sem-Five-Project/edimy/models"
)

// TransitionResult is the outcome of a guard check. A blocked transition
// carries the reason instead of failing silently.
type TransitionResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allowed() TransitionResult { return TransitionResult{Allowed: true} }

func blocked(reason string) TransitionResult {
	return TransitionResult{Allowed: false, Reason: reason}
}

// guardFunc validates a session against a target step's preconditions.
type guardFunc func(s *models.BookingSession) TransitionResult

// BackEdge describes where GoBack lands from a step and whether getting
// there requires compensating actions. ReleaseLocks makes "release on back"
// a structural property of the table rather than a call buried in a method.
type BackEdge struct {
	To           models.BookingStep
	ReleaseLocks bool
}

// FSM holds the transition table for the booking flow.
type FSM struct {
	guards map[models.BookingStep]guardFunc
	back   map[models.BookingStep]BackEdge
}

// NewFSM builds the booking flow table:
//
//	tutor-selection -> slot-selection -> payment -> confirmation
//
// with back edges from every step except the first. The payment back edge
// is the only one with a compensating action (slot release).
func NewFSM() *FSM {
	return &FSM{
		guards: map[models.BookingStep]guardFunc{
			models.StepSlotSelection: guardSlotSelection,
			models.StepPayment:       guardPayment,
			models.StepConfirmation:  guardConfirmation,
		},
		back: map[models.BookingStep]BackEdge{
			models.StepSlotSelection: {To: models.StepTutorSelection},
			models.StepPayment:       {To: models.StepSlotSelection, ReleaseLocks: true},
			models.StepConfirmation:  {To: models.StepPayment},
		},
	}
}

// CanProceed checks the guard for entering the given step. Steps without a
// registered guard are permissive.
func (f *FSM) CanProceed(s *models.BookingSession, to models.BookingStep) TransitionResult {
	guard, ok := f.guards[to]
	if !ok {
		return allowed()
	}
	return guard(s)
}

// BackEdgeFrom resolves the back edge for the given step. The second return
// value is false for steps with no back edge (tutor-selection).
func (f *FSM) BackEdgeFrom(step models.BookingStep) (BackEdge, bool) {
	edge, ok := f.back[step]
	return edge, ok
}

func guardSlotSelection(s *models.BookingSession) TransitionResult {
	if !s.HasTutor() {
		return blocked("no tutor selected")
	}
	return allowed()
}

func guardPayment(s *models.BookingSession) TransitionResult {
	if !s.HasTutor() {
		return blocked("no tutor selected")
	}
	if s.SelectedDate == "" {
		return blocked("no date selected")
	}
	if s.Preferences.Subject == "" {
		return blocked("no subject selected")
	}
	if s.Preferences.ClassType == "" {
		return blocked("no class type selected")
	}
	// Language choice only matters when the tutor teaches more than one.
	if len(s.Tutor.Languages) > 1 && s.Preferences.Language == "" {
		return blocked("tutor offers multiple languages; one must be selected")
	}
	if s.HasMonthlyLocks() {
		return allowed()
	}
	if len(s.LockedSlotIDs) == 1 {
		return allowed()
	}
	if len(s.LockedSlotIDs) == 0 {
		return blocked("no slot reserved")
	}
	return blocked("multiple slots locked without a monthly booking")
}

func guardConfirmation(s *models.BookingSession) TransitionResult {
	if s.BookingID == "" {
		return blocked("booking has not been confirmed by payment")
	}
	return allowed()
}
