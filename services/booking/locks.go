package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	slotRepo "github.com/Sem-Five-Project/edimy/database/repository/slot"
	"github.com/Sem-Five-Project/edimy/models"
	"github.com/Sem-Five-Project/edimy/services/tasks"
)

// SlotLockService is the single boundary through which the flow touches
// slot lock state. All calls are fallible; release is idempotent.
type SlotLockService interface {
	ReserveSlot(ctx context.Context, sessionID, slotID string) (*models.ReservationDetails, error)
	ReserveSlots(ctx context.Context, sessionID string, slotIDs []string) (*models.ReservationDetails, error)
	ReleaseSlots(ctx context.Context, slotIDs []string) error
}

// TaskScheduler enqueues deferred tasks. Satisfied by *asynq.Client.
type TaskScheduler interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultSlotLockService locks slots in the slot repository and schedules a
// durable release task at each lock's expiry.
type DefaultSlotLockService struct {
	Repo      slotRepo.SlotRepository
	Scheduler TaskScheduler
	LockTTL   time.Duration
	Logger    *zap.Logger
}

// NewSlotLockService constructs the lock service.
func NewSlotLockService(repo slotRepo.SlotRepository, scheduler TaskScheduler, lockTTL time.Duration, logger *zap.Logger) *DefaultSlotLockService {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &DefaultSlotLockService{Repo: repo, Scheduler: scheduler, LockTTL: lockTTL, Logger: logger}
}

// ReserveSlot places a lock on a single slot for the session.
func (s *DefaultSlotLockService) ReserveSlot(ctx context.Context, sessionID, slotID string) (*models.ReservationDetails, error) {
	return s.ReserveSlots(ctx, sessionID, []string{slotID})
}

// ReserveSlots locks every listed slot under one expiry. If any lock fails,
// locks taken so far are rolled back so the session never holds a partial
// reservation.
func (s *DefaultSlotLockService) ReserveSlots(ctx context.Context, sessionID string, slotIDs []string) (*models.ReservationDetails, error) {
	if len(slotIDs) == 0 {
		return nil, NewSlotLockError("no slots to reserve")
	}

	expiry := time.Now().Add(s.LockTTL)
	var taken []string
	for _, slotID := range slotIDs {
		if err := s.Repo.TryLock(ctx, slotID, sessionID, expiry); err != nil {
			if rollbackErr := s.ReleaseSlots(ctx, taken); rollbackErr != nil {
				s.Logger.Warn("failed to roll back partial reservation",
					zap.String("sessionId", sessionID), zap.Error(rollbackErr))
			}
			if err == slotRepo.ErrSlotTaken {
				return nil, NewSlotLockError(fmt.Sprintf("slot %s is no longer available", slotID))
			}
			return nil, fmt.Errorf("failed to reserve slot %s: %w", slotID, err)
		}
		taken = append(taken, slotID)
		s.scheduleBackstopRelease(slotID, sessionID, expiry)
	}

	return &models.ReservationDetails{
		ReservationSlotID: slotIDs[0],
		ExpiresAt:         expiry,
	}, nil
}

// ReleaseSlots releases each slot, collecting failures instead of stopping
// at the first one. Releasing an already-released or unknown slot is fine.
func (s *DefaultSlotLockService) ReleaseSlots(ctx context.Context, slotIDs []string) error {
	var firstErr error
	for _, slotID := range slotIDs {
		if err := s.Repo.Release(ctx, slotID); err != nil {
			s.Logger.Warn("slot release failed", zap.String("slotId", slotID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *DefaultSlotLockService) scheduleBackstopRelease(slotID, sessionID string, expiry time.Time) {
	if s.Scheduler == nil {
		return
	}
	task, opts, err := tasks.NewSlotReleaseTask(tasks.SlotReleasePayload{SlotID: slotID, SessionID: sessionID}, expiry)
	if err != nil {
		s.Logger.Warn("failed to build release task", zap.String("slotId", slotID), zap.Error(err))
		return
	}
	if _, err := s.Scheduler.Enqueue(task, opts...); err != nil {
		// The repository-side expiry sweep still reclaims the lock.
		s.Logger.Warn("failed to schedule release task", zap.String("slotId", slotID), zap.Error(err))
	}
}
