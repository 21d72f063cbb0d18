package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Sem-Five-Project/edimy/models"
)

// fakeLockService records reserve and release traffic.
type fakeLockService struct {
	mu          sync.Mutex
	held        map[string]bool
	releases    map[string]int
	failNext    bool
	failRelease bool
}

func newFakeLockService() *fakeLockService {
	return &fakeLockService{held: make(map[string]bool), releases: make(map[string]int)}
}

func (f *fakeLockService) ReserveSlot(ctx context.Context, sessionID, slotID string) (*models.ReservationDetails, error) {
	return f.ReserveSlots(ctx, sessionID, []string{slotID})
}

func (f *fakeLockService) ReserveSlots(ctx context.Context, sessionID string, slotIDs []string) (*models.ReservationDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, NewSlotLockError("slot is no longer available")
	}
	for _, id := range slotIDs {
		f.held[id] = true
	}
	return &models.ReservationDetails{
		ReservationSlotID: slotIDs[0],
		ExpiresAt:         time.Now().Add(10 * time.Minute),
	}, nil
}

func (f *fakeLockService) ReleaseSlots(ctx context.Context, slotIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range slotIDs {
		f.releases[id]++
	}
	if f.failRelease {
		f.failRelease = false
		return errors.New("release backend unavailable")
	}
	for _, id := range slotIDs {
		delete(f.held, id)
	}
	return nil
}

func (f *fakeLockService) releaseCount(slotID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases[slotID]
}

// fakeTutorRepo serves a fixed tutor set.
type fakeTutorRepo struct {
	tutors map[string]*models.Tutor
}

func (f *fakeTutorRepo) Create(ctx context.Context, t *models.Tutor) error { return nil }
func (f *fakeTutorRepo) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	t, ok := f.tutors[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return t, nil
}
func (f *fakeTutorRepo) GetByEmail(ctx context.Context, email string) (*models.Tutor, error) {
	return nil, mongo.ErrNoDocuments
}
func (f *fakeTutorRepo) Search(ctx context.Context, q models.TutorSearchQuery) ([]models.Tutor, error) {
	return nil, nil
}
func (f *fakeTutorRepo) Update(ctx context.Context, t *models.Tutor) error { return nil }

func (f *fakeTutorRepo) AddRating(ctx context.Context, id string, r float64) error { return nil }

func (f *fakeTutorRepo) Delete(ctx context.Context, id string) error { return nil }

// fakeSlotRepo keeps slots in memory.
type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.TimeSlot
}

func newFakeSlotRepo(slots ...models.TimeSlot) *fakeSlotRepo {
	r := &fakeSlotRepo{slots: make(map[string]*models.TimeSlot)}
	for i := range slots {
		s := slots[i]
		r.slots[s.ID] = &s
	}
	return r
}

func (f *fakeSlotRepo) CreateMany(ctx context.Context, slots []models.TimeSlot) ([]string, error) {
	return nil, nil
}
func (f *fakeSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *s
	return &cp, nil
}
func (f *fakeSlotRepo) GetByTutorAndDate(ctx context.Context, tutorID, date string) ([]models.TimeSlot, error) {
	return nil, nil
}
func (f *fakeSlotRepo) GetByTutorAndRange(ctx context.Context, tutorID, fromDate, toDate string) ([]models.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TimeSlot
	for _, s := range f.slots {
		if s.TutorID == tutorID && s.Date >= fromDate && s.Date <= toDate {
			out = append(out, *s)
		}
	}
	return out, nil
}
func (f *fakeSlotRepo) TryLock(ctx context.Context, slotID, sessionID string, expiry time.Time) error {
	return nil
}
func (f *fakeSlotRepo) Release(ctx context.Context, slotID string) error { return nil }
func (f *fakeSlotRepo) MarkBooked(ctx context.Context, slotID, sessionID, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	s.Status = models.SlotStatusBooked
	s.BookingID = bookingID
	return nil
}
func (f *fakeSlotRepo) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeSlotRepo) DeleteByID(ctx context.Context, tutorID, slotID string) error { return nil }

// fakeBookingRepo keeps booking records in memory.
type fakeBookingRepo struct {
	mu      sync.Mutex
	records map[string]*models.Booking
	nextID  int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{records: make(map[string]*models.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = fmt.Sprintf("bk-%d", f.nextID)
	cp := *b
	f.records[b.ID] = &cp
	return nil
}
func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.records[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *b
	return &cp, nil
}
func (f *fakeBookingRepo) GetByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.records {
		if b.StudentID == studentID {
			out = append(out, *b)
		}
	}
	return out, nil
}
func (f *fakeBookingRepo) GetByTutor(ctx context.Context, tutorID string) ([]models.Booking, error) {
	return nil, nil
}
func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.records[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	b.Status = status
	return nil
}
func (f *fakeBookingRepo) SetPaymentID(ctx context.Context, id, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.records[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	b.PaymentID = paymentID
	return nil
}
func (f *fakeBookingRepo) SetMeetingLink(ctx context.Context, id, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.records[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	b.MeetingLink = link
	return nil
}

func testTutor() *models.Tutor {
	return &models.Tutor{
		ID:        "tut-1",
		Name:      "Amara",
		Subjects:  []models.TutorSubject{{Name: "Mathematics", HourlyRate: 2000}},
		Languages: []string{"English"},
	}
}

func newTestFlow(t *testing.T) (*DefaultBookingFlowService, *fakeLockService, *fakeSlotRepo, *fakeBookingRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	locks := newFakeLockService()
	slots := newFakeSlotRepo(models.TimeSlot{
		ID:      "slot-1",
		TutorID: "tut-1",
		Date:    "2026-09-15",
		Start:   960,
		End:     1020,
		Status:  models.SlotStatusAvailable,
	})
	bookings := newFakeBookingRepo()

	svc := &DefaultBookingFlowService{
		Sessions: NewRedisSessionStore(client, 30*time.Minute),
		Flow:     NewFSM(),
		Locks:    locks,
		Timers:   NewReservationTimers(),
		Tutors:   &fakeTutorRepo{tutors: map[string]*models.Tutor{"tut-1": testTutor()}},
		Slots:    slots,
		Bookings: bookings,
		Logger:   zap.NewNop(),
	}
	return svc, locks, slots, bookings
}

// reserveToPayment drives a fresh session to the payment step with one
// locked slot.
func reserveToPayment(t *testing.T, svc *DefaultBookingFlowService) *models.BookingSession {
	t.Helper()
	ctx := context.Background()

	session, err := svc.InitiateSession(ctx, "stu-1")
	require.NoError(t, err)

	session, err = svc.SelectTutor(ctx, session.SessionID, "tut-1")
	require.NoError(t, err)
	require.Equal(t, models.StepSlotSelection, session.CurrentStep)

	session, err = svc.SelectDate(ctx, session.SessionID, "2026-09-15")
	require.NoError(t, err)

	session, err = svc.SetPreferences(ctx, session.SessionID, models.BookingPreferences{
		Subject:   "Mathematics",
		ClassType: models.ClassTypeOneTime,
	})
	require.NoError(t, err)

	session, err = svc.ReserveSlot(ctx, session.SessionID, "slot-1")
	require.NoError(t, err)
	require.NotNil(t, session.Reservation)

	res, session, err := svc.ProceedToStep(ctx, session.SessionID, models.StepPayment)
	require.NoError(t, err)
	require.True(t, res.Allowed, res.Reason)
	return session
}

func TestProceedBlockedWithoutMutation(t *testing.T) {
	svc, _, _, _ := newTestFlow(t)
	ctx := context.Background()

	session, err := svc.InitiateSession(ctx, "stu-1")
	require.NoError(t, err)

	res, after, err := svc.ProceedToStep(ctx, session.SessionID, models.StepPayment)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.NotEmpty(t, res.Reason)
	assert.Equal(t, models.StepTutorSelection, after.CurrentStep, "blocked transition must not move the session")
}

func TestGoBackFromPaymentReleasesOnce(t *testing.T) {
	svc, locks, _, _ := newTestFlow(t)
	ctx := context.Background()

	session := reserveToPayment(t, svc)
	assert.True(t, svc.Timers.Active(session.SessionID))

	session, err := svc.GoBack(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StepSlotSelection, session.CurrentStep)
	assert.Empty(t, session.LockedSlotIDs)
	assert.Nil(t, session.Reservation)
	assert.Equal(t, 1, locks.releaseCount("slot-1"))
	assert.False(t, svc.Timers.Active(session.SessionID), "back past payment disarms the countdown")

	// Going back again follows the slot-selection edge without touching locks.
	session, err = svc.GoBack(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StepTutorSelection, session.CurrentStep)
	assert.Equal(t, 1, locks.releaseCount("slot-1"))
}

func TestGoBackFromFirstStepIsNoop(t *testing.T) {
	svc, _, _, _ := newTestFlow(t)
	ctx := context.Background()

	session, err := svc.InitiateSession(ctx, "stu-1")
	require.NoError(t, err)

	after, err := svc.GoBack(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StepTutorSelection, after.CurrentStep)
}

func TestReserveReplacementReleasesPrevious(t *testing.T) {
	svc, locks, slots, _ := newTestFlow(t)
	ctx := context.Background()

	slots.mu.Lock()
	slots.slots["slot-2"] = &models.TimeSlot{
		ID: "slot-2", TutorID: "tut-1", Date: "2026-09-16",
		Start: 960, End: 1020, Status: models.SlotStatusAvailable,
	}
	slots.mu.Unlock()

	session := reserveToPayment(t, svc)

	// Back to slot selection, then pick a different slot.
	session, err := svc.GoBack(ctx, session.SessionID)
	require.NoError(t, err)

	session, err = svc.ReserveSlot(ctx, session.SessionID, "slot-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"slot-2"}, session.LockedSlotIDs)
	assert.Equal(t, 1, locks.releaseCount("slot-1"))
}

func TestExpireReservationRewindsAndReleases(t *testing.T) {
	svc, locks, _, _ := newTestFlow(t)
	ctx := context.Background()

	session := reserveToPayment(t, svc)

	// Age the hold past its deadline before firing the expiry path.
	session.Reservation.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, svc.Sessions.Save(ctx, session))

	svc.ExpireReservation(session.SessionID)

	after, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StepSlotSelection, after.CurrentStep)
	assert.Empty(t, after.LockedSlotIDs)
	assert.Nil(t, after.Reservation)
	assert.Equal(t, 1, locks.releaseCount("slot-1"))

	// Expiry with nothing reserved is a no-op.
	svc.ExpireReservation(session.SessionID)
	assert.Equal(t, 1, locks.releaseCount("slot-1"))
}

func TestExpireReservationSkipsLiveHold(t *testing.T) {
	svc, locks, slots, _ := newTestFlow(t)
	ctx := context.Background()

	slots.mu.Lock()
	slots.slots["slot-2"] = &models.TimeSlot{
		ID: "slot-2", TutorID: "tut-1", Date: "2026-09-16",
		Start: 960, End: 1020, Status: models.SlotStatusAvailable,
	}
	slots.mu.Unlock()

	// Reserve slot-1, back out, then re-reserve slot-2 and move to payment.
	// The deferred release task for slot-1 is still queued at this point.
	session := reserveToPayment(t, svc)
	session, err := svc.GoBack(ctx, session.SessionID)
	require.NoError(t, err)
	session, err = svc.ReserveSlot(ctx, session.SessionID, "slot-2")
	require.NoError(t, err)
	_, session, err = svc.ProceedToStep(ctx, session.SessionID, models.StepPayment)
	require.NoError(t, err)

	// The stale task fires while slot-2's hold has plenty of time left.
	svc.ExpireReservation(session.SessionID)

	after, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, after.CurrentStep, "a live hold must survive a stale expiry")
	assert.Equal(t, []string{"slot-2"}, after.LockedSlotIDs)
	assert.NotNil(t, after.Reservation)
	assert.Equal(t, 0, locks.releaseCount("slot-2"))
	assert.True(t, svc.Timers.Active(session.SessionID))
}

func TestReserveFailureClearsStoredLocks(t *testing.T) {
	svc, locks, _, _ := newTestFlow(t)
	ctx := context.Background()

	session, err := svc.InitiateSession(ctx, "stu-1")
	require.NoError(t, err)
	session, err = svc.SelectTutor(ctx, session.SessionID, "tut-1")
	require.NoError(t, err)
	session, err = svc.ReserveSlot(ctx, session.SessionID, "slot-1")
	require.NoError(t, err)

	// Replacing the hold releases slot-1 first; the new reserve then fails.
	locks.mu.Lock()
	locks.failNext = true
	locks.mu.Unlock()
	_, err = svc.ReserveSlot(ctx, session.SessionID, "slot-2")
	require.Error(t, err)

	after, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Empty(t, after.LockedSlotIDs, "stored session must not claim the released lock")
	assert.Nil(t, after.Reservation)
	assert.Equal(t, 1, locks.releaseCount("slot-1"))
	assert.False(t, svc.Timers.Active(session.SessionID))
}

func TestGoBackClearsLocksWhenReleaseFails(t *testing.T) {
	svc, locks, _, _ := newTestFlow(t)
	ctx := context.Background()

	session := reserveToPayment(t, svc)

	locks.mu.Lock()
	locks.failRelease = true
	locks.mu.Unlock()

	session, err := svc.GoBack(ctx, session.SessionID)
	require.NoError(t, err, "a failed release must not strand the flow")
	assert.Equal(t, models.StepSlotSelection, session.CurrentStep)
	assert.Empty(t, session.LockedSlotIDs)
	assert.Nil(t, session.Reservation)
	assert.False(t, svc.Timers.Active(session.SessionID))

	after, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Empty(t, after.LockedSlotIDs)
	assert.Nil(t, after.Reservation)
}

func TestConfirmPaymentFinalizesBooking(t *testing.T) {
	svc, _, slots, bookings := newTestFlow(t)
	ctx := context.Background()

	session := reserveToPayment(t, svc)

	pending, err := svc.CreatePendingBooking(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, pending.Status)
	assert.InDelta(t, 2000.0, pending.TotalPrice, 1e-9, "one hour at the subject rate")

	session, err = svc.ConfirmPayment(ctx, session.SessionID, "pay-123")
	require.NoError(t, err)
	assert.Equal(t, models.StepConfirmation, session.CurrentStep)
	assert.Equal(t, pending.ID, session.BookingID)
	assert.Nil(t, session.Reservation)
	assert.False(t, svc.Timers.Active(session.SessionID))

	slot, err := slots.GetByID(ctx, "slot-1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotStatusBooked, slot.Status)
	assert.Equal(t, pending.ID, slot.BookingID)

	record, err := bookings.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, record.Status)
	assert.Equal(t, "pay-123", record.PaymentID)
}

func TestConfirmPaymentWithoutPendingBooking(t *testing.T) {
	svc, _, _, _ := newTestFlow(t)

	session := reserveToPayment(t, svc)

	_, err := svc.ConfirmPayment(context.Background(), session.SessionID, "pay-123")
	require.Error(t, err)
	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "paymentError", fe.Code)
}

func TestResetSessionIsIdempotent(t *testing.T) {
	svc, locks, _, _ := newTestFlow(t)
	ctx := context.Background()

	session := reserveToPayment(t, svc)

	for i := 0; i < 3; i++ {
		after, err := svc.ResetSession(ctx, session.SessionID)
		require.NoError(t, err)
		assert.Equal(t, models.StepTutorSelection, after.CurrentStep)
		assert.Nil(t, after.Tutor)
		assert.Empty(t, after.SelectedDate)
		assert.Empty(t, after.LockedSlotIDs)
		assert.Nil(t, after.Reservation)
		assert.Empty(t, after.BookingID)
	}
	assert.Equal(t, 1, locks.releaseCount("slot-1"), "repeat resets must not re-release")
}

func TestCancelSessionDeletes(t *testing.T) {
	svc, locks, _, _ := newTestFlow(t)
	ctx := context.Background()

	session := reserveToPayment(t, svc)
	require.NoError(t, svc.CancelSession(ctx, session.SessionID))
	assert.Equal(t, 1, locks.releaseCount("slot-1"))

	_, err := svc.GetSession(ctx, session.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, svc.CancelSession(ctx, session.SessionID), "cancelling twice is fine")
}

func TestReserveMonthlyLocksMatchingSlots(t *testing.T) {
	svc, _, slots, _ := newTestFlow(t)
	ctx := context.Background()

	// Tuesdays in September 2030 after the anchor: the 10th, 17th and
	// 24th. The 17th has no published slot, so it becomes a conflict.
	slots.mu.Lock()
	slots.slots["slot-10"] = &models.TimeSlot{
		ID: "slot-10", TutorID: "tut-1", Date: "2030-09-10",
		Start: 960, End: 1020, Status: models.SlotStatusAvailable,
	}
	slots.slots["slot-24"] = &models.TimeSlot{
		ID: "slot-24", TutorID: "tut-1", Date: "2030-09-24",
		Start: 960, End: 1020, Status: models.SlotStatusAvailable,
	}
	slots.mu.Unlock()

	session, err := svc.InitiateSession(ctx, "stu-1")
	require.NoError(t, err)
	session, err = svc.SelectTutor(ctx, session.SessionID, "tut-1")
	require.NoError(t, err)
	_, err = svc.SetPreferences(ctx, session.SessionID, models.BookingPreferences{
		Subject:   "Mathematics",
		ClassType: models.ClassTypeMonthly,
	})
	require.NoError(t, err)

	patterns := []models.SlotPattern{
		{Weekday: time.Tuesday, Windows: []models.TimeWindow{{Start: 960, End: 1020}}},
	}
	session, err = svc.ReserveMonthly(ctx, session.SessionID, patterns, "2030-09-05")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"slot-10", "slot-24"}, session.LockedSlotIDs)
	require.NotNil(t, session.MonthlyData)
	assert.True(t, svc.Timers.Active(session.SessionID))

	conflicts := 0
	for _, w := range session.MonthlyData.Weeks {
		if w.HasConflict {
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts, "the Tuesday without a published slot conflicts")

	for _, w := range session.MonthlyData.Weeks {
		for _, occ := range w.Slots {
			assert.Equal(t, occ.Available, occ.Locked, "every available occurrence is locked")
		}
	}
}
