package killer

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCooldown is how long the guard stays engaged after a batch ends.
const DefaultCooldown = time.Second

const (
	guardIdle int32 = iota
	guardBusy
	guardCooling
)

// Guard admits one kill batch at a time. Triggers arriving while a batch is
// in flight, or during the cooldown after it, are refused rather than queued.
type Guard struct {
	state    atomic.Int32
	cooldown time.Duration
}

// NewGuard creates an idle Guard.
func NewGuard(cooldown time.Duration) *Guard {
	return &Guard{cooldown: cooldown}
}

// Acquire engages the guard. The returned release must be called when the
// batch completes; it returns the guard to idle once the cooldown elapses.
func (g *Guard) Acquire() (release func(), ok bool) {
	if !g.state.CompareAndSwap(guardIdle, guardBusy) {
		return nil, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if g.cooldown <= 0 {
				g.state.Store(guardIdle)
				return
			}
			g.state.Store(guardCooling)
			time.AfterFunc(g.cooldown, func() {
				g.state.CompareAndSwap(guardCooling, guardIdle)
			})
		})
	}, true
}

// Active reports whether a batch is running or cooling down. Menu rebuilds
// are held back while it is.
func (g *Guard) Active() bool {
	return g.state.Load() != guardIdle
}
