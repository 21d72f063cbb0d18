// File: database/repository/slot/slot_mongo.go
package slotRepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sem-Five-Project/edimy/models"
)

// ErrSlotTaken is returned when a lock attempt loses to another session or
// the slot is already booked.
var ErrSlotTaken = errors.New("slot is not available")

const opTimeout = 5 * time.Second

func (r *mongoSlotRepo) CreateMany(ctx context.Context, slots []models.TimeSlot) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	docs := make([]interface{}, len(slots))
	ids := make([]string, len(slots))
	for i, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		if slot.Status == "" {
			slot.Status = models.SlotStatusAvailable
		}
		ids[i] = slot.ID
		docs[i] = slot
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var slot models.TimeSlot
	if err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *mongoSlotRepo) GetByTutorAndDate(ctx context.Context, tutorID, date string) ([]models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"tutorId": tutorID, "date": date})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *mongoSlotRepo) GetByTutorAndRange(ctx context.Context, tutorID, fromDate, toDate string) ([]models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"tutorId": tutorID,
		"date":    bson.M{"$gte": fromDate, "$lte": toDate},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *mongoSlotRepo) TryLock(ctx context.Context, slotID, sessionID string, expiry time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Conditional flip: only an AVAILABLE slot can be locked. The filter is
	// the concurrency guard; losing the race leaves MatchedCount at zero.
	filter := bson.M{"id": slotID, "status": models.SlotStatusAvailable}
	update := bson.M{
		"$set": bson.M{
			"status":     models.SlotStatusInProgress,
			"lockedBy":   sessionID,
			"lockExpiry": expiry,
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSlotTaken
	}
	return nil
}

func (r *mongoSlotRepo) Release(ctx context.Context, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"id": slotID, "status": models.SlotStatusInProgress}
	update := bson.M{
		"$set":   bson.M{"status": models.SlotStatusAvailable},
		"$unset": bson.M{"lockedBy": "", "lockExpiry": ""},
		"$inc":   bson.M{"version": 1},
	}
	// Idempotent: releasing an unlocked or unknown slot matches nothing and
	// is not an error.
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *mongoSlotRepo) MarkBooked(ctx context.Context, slotID, sessionID, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"id": slotID, "status": models.SlotStatusInProgress, "lockedBy": sessionID}
	update := bson.M{
		"$set":   bson.M{"status": models.SlotStatusBooked, "bookingId": bookingID},
		"$unset": bson.M{"lockedBy": "", "lockExpiry": ""},
		"$inc":   bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSlotTaken
	}
	return nil
}

func (r *mongoSlotRepo) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"status":     models.SlotStatusInProgress,
		"lockExpiry": bson.M{"$lte": now},
	}
	update := bson.M{
		"$set":   bson.M{"status": models.SlotStatusAvailable},
		"$unset": bson.M{"lockedBy": "", "lockExpiry": ""},
		"$inc":   bson.M{"version": 1},
	}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *mongoSlotRepo) DeleteByID(ctx context.Context, tutorID, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": slotID, "tutorId": tutorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
