package game

import (
	"context"
	"time"
)

// TickerFunc starts a periodic ticker and returns its channel and a stop
// function. Tests substitute a hand-driven channel.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// scheduler is the draw timer owned by exactly one room. The room keeps the
// handle; a tick whose handle is no longer attached to the room is a no-op.
type scheduler struct {
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// startScheduler calls tick on every ticker fire until tick returns false
// or the scheduler is halted.
func startScheduler(interval time.Duration, newTicker TickerFunc, tick func(*scheduler) bool) *scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &scheduler{
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	ticks, stop := newTicker(interval)

	go func() {
		defer close(s.done)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if !tick(s) {
					return
				}
			}
		}
	}()
	return s
}

// halt cancels the timer. Safe to call more than once.
func (s *scheduler) halt() { s.cancel() }

// wait blocks until the timer goroutine has exited. Never call it while
// holding the owning room's lock.
func (s *scheduler) wait() { <-s.done }

func haltAndWait(s *scheduler) {
	if s == nil {
		return
	}
	s.halt()
	s.wait()
}
