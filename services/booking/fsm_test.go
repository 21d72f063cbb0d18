package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sem-Five-Project/edimy/models"
)

func sessionWithTutor(languages ...string) *models.BookingSession {
	return &models.BookingSession{
		SessionID:   "sess-1",
		StudentID:   "stu-1",
		CurrentStep: models.StepSlotSelection,
		Tutor: &models.Tutor{
			ID:        "tut-1",
			Name:      "Amara",
			Subjects:  []models.TutorSubject{{Name: "Mathematics", HourlyRate: 2000}},
			Languages: languages,
		},
	}
}

func TestCanProceedSlotSelection(t *testing.T) {
	fsm := NewFSM()

	res := fsm.CanProceed(&models.BookingSession{}, models.StepSlotSelection)
	assert.False(t, res.Allowed)
	assert.Equal(t, "no tutor selected", res.Reason)

	res = fsm.CanProceed(sessionWithTutor("English"), models.StepSlotSelection)
	assert.True(t, res.Allowed)
}

func TestCanProceedPayment(t *testing.T) {
	base := func() *models.BookingSession {
		s := sessionWithTutor("English")
		s.SelectedDate = "2026-09-15"
		s.Preferences = models.BookingPreferences{
			Subject:   "Mathematics",
			ClassType: models.ClassTypeOneTime,
		}
		s.LockedSlotIDs = []string{"slot-1"}
		return s
	}

	tests := []struct {
		name    string
		mutate  func(s *models.BookingSession)
		allowed bool
		reason  string
	}{
		{
			name:    "complete single-slot session",
			mutate:  func(s *models.BookingSession) {},
			allowed: true,
		},
		{
			name:    "no tutor",
			mutate:  func(s *models.BookingSession) { s.Tutor = nil },
			allowed: false,
			reason:  "no tutor selected",
		},
		{
			name:    "no date",
			mutate:  func(s *models.BookingSession) { s.SelectedDate = "" },
			allowed: false,
			reason:  "no date selected",
		},
		{
			name:    "no subject",
			mutate:  func(s *models.BookingSession) { s.Preferences.Subject = "" },
			allowed: false,
			reason:  "no subject selected",
		},
		{
			name:    "no class type",
			mutate:  func(s *models.BookingSession) { s.Preferences.ClassType = "" },
			allowed: false,
			reason:  "no class type selected",
		},
		{
			name: "multilingual tutor without language choice",
			mutate: func(s *models.BookingSession) {
				s.Tutor.Languages = []string{"English", "Sinhala"}
			},
			allowed: false,
			reason:  "tutor offers multiple languages; one must be selected",
		},
		{
			name: "multilingual tutor with language choice",
			mutate: func(s *models.BookingSession) {
				s.Tutor.Languages = []string{"English", "Sinhala"}
				s.Preferences.Language = "Sinhala"
			},
			allowed: true,
		},
		{
			name:    "no slot reserved",
			mutate:  func(s *models.BookingSession) { s.LockedSlotIDs = nil },
			allowed: false,
			reason:  "no slot reserved",
		},
		{
			name: "multiple locks without monthly data",
			mutate: func(s *models.BookingSession) {
				s.LockedSlotIDs = []string{"slot-1", "slot-2"}
			},
			allowed: false,
			reason:  "multiple slots locked without a monthly booking",
		},
		{
			name: "monthly booking with many locks",
			mutate: func(s *models.BookingSession) {
				s.LockedSlotIDs = []string{"slot-1", "slot-2", "slot-3"}
				s.MonthlyData = &models.MonthlyClassBooking{
					Patterns: []models.SlotPattern{{Weekday: 2, Windows: []models.TimeWindow{{Start: 960, End: 1020}}}},
				}
			},
			allowed: true,
		},
	}

	fsm := NewFSM()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := base()
			tc.mutate(s)
			res := fsm.CanProceed(s, models.StepPayment)
			assert.Equal(t, tc.allowed, res.Allowed)
			if !tc.allowed {
				assert.Equal(t, tc.reason, res.Reason)
			}
		})
	}
}

func TestCanProceedConfirmation(t *testing.T) {
	fsm := NewFSM()

	s := sessionWithTutor("English")
	res := fsm.CanProceed(s, models.StepConfirmation)
	assert.False(t, res.Allowed)

	s.BookingID = "bk-1"
	res = fsm.CanProceed(s, models.StepConfirmation)
	assert.True(t, res.Allowed)
}

func TestBackEdges(t *testing.T) {
	fsm := NewFSM()

	_, ok := fsm.BackEdgeFrom(models.StepTutorSelection)
	assert.False(t, ok, "first step has no back edge")

	edge, ok := fsm.BackEdgeFrom(models.StepSlotSelection)
	assert.True(t, ok)
	assert.Equal(t, models.StepTutorSelection, edge.To)
	assert.False(t, edge.ReleaseLocks)

	edge, ok = fsm.BackEdgeFrom(models.StepPayment)
	assert.True(t, ok)
	assert.Equal(t, models.StepSlotSelection, edge.To)
	assert.True(t, edge.ReleaseLocks, "leaving payment must release locks")

	edge, ok = fsm.BackEdgeFrom(models.StepConfirmation)
	assert.True(t, ok)
	assert.Equal(t, models.StepPayment, edge.To)
	assert.False(t, edge.ReleaseLocks)
}
