package cron

import (
	"context"
	"log"
	"time"

	slotRepo "github.com/Sem-Five-Project/edimy/database/repository/slot"
)

const sweepInterval = time.Minute

// InitExpirySweep periodically reclaims slots whose lock expiry has passed.
// It is the safety net behind the per-reservation timers and the deferred
// release tasks: even if both miss, no slot stays locked past its expiry
// by more than one sweep interval.
func InitExpirySweep(slots slotRepo.SlotRepository) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := slots.ReleaseExpired(ctx, time.Now())
			cancel()
			if err != nil {
				log.Printf("[ExpirySweep] failed to release expired locks: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[ExpirySweep] reclaimed %d expired slot locks", n)
			}
		}
	}()
}
