package service

import (
	"context"
	"math"
	"sync"
	"time"
)

// AutoAdvancer runs one countdown per session. When the countdown ends the
// fire callback is invoked; every second in between the tick callback gets the
// remaining seconds.
type AutoAdvancer struct {
	mu      sync.Mutex
	ctx     context.Context
	pending map[string]*countdown
	seq     uint64
}

type countdown struct {
	id     uint64
	cancel context.CancelFunc
}

// NewAutoAdvancer creates an AutoAdvancer. Cancelling ctx stops all countdowns.
func NewAutoAdvancer(ctx context.Context) *AutoAdvancer {
	return &AutoAdvancer{
		ctx:     ctx,
		pending: make(map[string]*countdown),
	}
}

// Schedule starts a countdown for the session, replacing any pending one, and
// returns its ID. onTick may be nil.
func (a *AutoAdvancer) Schedule(sessionID string, delay time.Duration, onTick func(remaining int), onFire func()) uint64 {
	a.mu.Lock()
	if prev, ok := a.pending[sessionID]; ok {
		prev.cancel()
	}
	a.seq++
	ctx, cancel := context.WithCancel(a.ctx)
	cd := &countdown{id: a.seq, cancel: cancel}
	a.pending[sessionID] = cd
	a.mu.Unlock()

	go a.run(ctx, sessionID, cd, delay, onTick, onFire)
	return cd.id
}

func (a *AutoAdvancer) run(
	ctx context.Context,
	sessionID string,
	cd *countdown,
	delay time.Duration,
	onTick func(remaining int),
	onFire func(),
) {
	defer a.release(sessionID, cd)

	deadline := time.Now().Add(delay)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := int(math.Ceil(time.Until(deadline).Seconds()))
			if remaining > 0 && onTick != nil {
				onTick(remaining)
			}
		case <-timer.C:
			// Cancel may race with the timer; the cancelled one must not fire.
			if !a.release(sessionID, cd) {
				return
			}
			onFire()
			return
		}
	}
}

// release removes cd if it is still the pending countdown of the session.
func (a *AutoAdvancer) release(sessionID string, cd *countdown) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	cur, ok := a.pending[sessionID]
	if !ok || cur.id != cd.id {
		return false
	}
	if cd.cancel != nil {
		cd.cancel()
	}
	delete(a.pending, sessionID)
	return true
}

// Cancel stops the pending countdown of the session, if any.
func (a *AutoAdvancer) Cancel(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cd, ok := a.pending[sessionID]; ok {
		cd.cancel()
		delete(a.pending, sessionID)
	}
}

// Pending reports whether the session has a countdown running.
func (a *AutoAdvancer) Pending(sessionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.pending[sessionID]
	return ok
}

// Current reports whether id is the countdown running for the session.
func (a *AutoAdvancer) Current(sessionID string, id uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	cd, ok := a.pending[sessionID]
	return ok && cd.id == id
}

// Stop cancels every pending countdown.
func (a *AutoAdvancer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, cd := range a.pending {
		cd.cancel()
		delete(a.pending, id)
	}
}
