package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeSlotRelease = "slot:release"

// SlotReleasePayload identifies a slot lock to reclaim at its expiry.
type SlotReleasePayload struct {
	SlotID    string `json:"slotId"`
	SessionID string `json:"sessionId"`
}

// NewSlotReleaseTask builds a deferred release task that fires at the lock's
// expiry. It is the durable backstop behind the in-process reservation
// timer: released-in-time locks make the task a no-op.
func NewSlotReleaseTask(payload SlotReleasePayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSlotRelease, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
