package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Sem-Five-Project/edimy/config"
	"github.com/Sem-Five-Project/edimy/services/booking"
	"github.com/Sem-Five-Project/edimy/services/tasks"
)

// InitReleaseWorker runs the deferred slot-release worker in background.
// Each task fires at a lock's expiry and funnels into the same expiry path
// as the in-process reservation timer, so locks are reclaimed even when the
// process that armed the timer is gone.
func InitReleaseWorker(flow booking.BookingFlowService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSlotRelease, handleSlotReleaseTask(flow))

	go func() {
		log.Println("[ReleaseWorker] starting async worker...")
		const maxAttempts = 5

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReleaseWorker] attempt %d/%d failed to start worker: %v", attempt, maxAttempts, err)
				time.Sleep(time.Duration(attempt) * 2 * time.Second)
				continue
			}
			return
		}
		log.Println("[ReleaseWorker] giving up; deferred releases rely on the expiry sweep")
	}()
}

func handleSlotReleaseTask(flow booking.BookingFlowService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload tasks.SlotReleasePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return err
		}
		// Idempotent: if the session confirmed or already released, the
		// expiry path is a no-op.
		flow.ExpireReservation(payload.SessionID)
		return nil
	}
}

// NewTaskClient builds the asynq client used to schedule deferred releases.
func NewTaskClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
}
