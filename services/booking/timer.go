package booking

import (
	"sync"
	"time"
)

// ReservationTimers tracks the countdown for each session's reservation.
// Invariant: at most one live timer per session. Arming a session that
// already has a timer cancels the old one first, so a reservation changing
// identity can never leave a stale countdown behind.
type ReservationTimers struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewReservationTimers constructs an empty timer registry.
func NewReservationTimers() *ReservationTimers {
	return &ReservationTimers{timers: make(map[string]*time.Timer)}
}

// Arm schedules onExpire to run when expiresAt passes, replacing any timer
// already armed for the session. An expiry already in the past fires the
// handler immediately (on the timer goroutine).
func (rt *ReservationTimers) Arm(sessionID string, expiresAt time.Time, onExpire func()) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if prev, ok := rt.timers[sessionID]; ok {
		prev.Stop()
	}

	d := time.Until(expiresAt)
	if d < 0 {
		d = 0
	}
	rt.timers[sessionID] = time.AfterFunc(d, func() {
		rt.mu.Lock()
		delete(rt.timers, sessionID)
		rt.mu.Unlock()
		onExpire()
	})
}

// Disarm cancels the session's timer, if any. It reports whether a timer
// was live.
func (rt *ReservationTimers) Disarm(sessionID string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	timer, ok := rt.timers[sessionID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(rt.timers, sessionID)
	return true
}

// Active reports whether the session currently has a live timer.
func (rt *ReservationTimers) Active(sessionID string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	_, ok := rt.timers[sessionID]
	return ok
}
