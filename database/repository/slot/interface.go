// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sem-Five-Project/edimy/database"
	"github.com/Sem-Five-Project/edimy/models"
)

// SlotRepository persists tutor time slots and their lock state.
type SlotRepository interface {
	CreateMany(ctx context.Context, slots []models.TimeSlot) ([]string, error)
	GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error)
	GetByTutorAndDate(ctx context.Context, tutorID, date string) ([]models.TimeSlot, error)
	GetByTutorAndRange(ctx context.Context, tutorID, fromDate, toDate string) ([]models.TimeSlot, error)

	// TryLock flips an AVAILABLE slot to IN_PROGRESS for the given session,
	// stamping the lock expiry. It fails with ErrSlotTaken when the slot is
	// already held or booked.
	TryLock(ctx context.Context, slotID, sessionID string, expiry time.Time) error

	// Release returns an IN_PROGRESS slot to AVAILABLE. Releasing a slot
	// that is not locked (or does not exist) is a no-op, not an error.
	Release(ctx context.Context, slotID string) error

	// MarkBooked flips an IN_PROGRESS slot held by sessionID to BOOKED and
	// attaches the booking id.
	MarkBooked(ctx context.Context, slotID, sessionID, bookingID string) error

	// ReleaseExpired returns all IN_PROGRESS slots whose lock expiry has
	// passed to AVAILABLE, and reports how many were reclaimed.
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)

	DeleteByID(ctx context.Context, tutorID, slotID string) error
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	return &mongoSlotRepo{
		coll: database.DB().Collection("slots"),
	}
}
