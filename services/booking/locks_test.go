package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	slotRepo "github.com/Sem-Five-Project/edimy/database/repository/slot"
	"github.com/Sem-Five-Project/edimy/models"
)

// lockingSlotRepo implements just enough of the slot repository to exercise
// the lock service: TryLock succeeds unless the slot is listed as taken.
type lockingSlotRepo struct {
	fakeSlotRepo
	mu       sync.Mutex
	taken    map[string]bool
	locked   []string
	released []string
}

func (r *lockingSlotRepo) TryLock(ctx context.Context, slotID, sessionID string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken[slotID] {
		return slotRepo.ErrSlotTaken
	}
	r.locked = append(r.locked, slotID)
	return nil
}

func (r *lockingSlotRepo) Release(ctx context.Context, slotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, slotID)
	return nil
}

type recordingScheduler struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (s *recordingScheduler) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestReserveSlotsAllOrNothing(t *testing.T) {
	repo := &lockingSlotRepo{taken: map[string]bool{"slot-3": true}}
	svc := NewSlotLockService(repo, nil, 10*time.Minute, zap.NewNop())

	_, err := svc.ReserveSlots(context.Background(), "sess-1", []string{"slot-1", "slot-2", "slot-3"})
	require.Error(t, err)
	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "slotLockError", fe.Code)

	assert.Equal(t, []string{"slot-1", "slot-2"}, repo.locked)
	assert.ElementsMatch(t, []string{"slot-1", "slot-2"}, repo.released,
		"locks taken before the failure must be rolled back")
}

func TestReserveSlotsSingleExpiry(t *testing.T) {
	repo := &lockingSlotRepo{taken: map[string]bool{}}
	sched := &recordingScheduler{}
	svc := NewSlotLockService(repo, sched, 10*time.Minute, zap.NewNop())

	before := time.Now()
	res, err := svc.ReserveSlots(context.Background(), "sess-1", []string{"slot-1", "slot-2"})
	require.NoError(t, err)

	assert.Equal(t, "slot-1", res.ReservationSlotID)
	assert.True(t, res.ExpiresAt.After(before.Add(9*time.Minute)))
	assert.Len(t, sched.tasks, 2, "one deferred release per locked slot")
}

func TestReserveSlotsEmpty(t *testing.T) {
	svc := NewSlotLockService(&lockingSlotRepo{}, nil, 10*time.Minute, zap.NewNop())
	_, err := svc.ReserveSlots(context.Background(), "sess-1", nil)
	require.Error(t, err)
}

func TestReservationDetailsExpired(t *testing.T) {
	res := &models.ReservationDetails{ExpiresAt: time.Now().Add(time.Minute)}
	assert.False(t, res.Expired(time.Now()))
	assert.True(t, res.Expired(time.Now().Add(2*time.Minute)))
	assert.True(t, res.Expired(res.ExpiresAt), "boundary counts as expired")
}
