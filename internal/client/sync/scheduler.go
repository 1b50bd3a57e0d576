package sync

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refresher re-fetches the authoritative cart.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Trigger names the event that caused a resync.
type Trigger string

const (
	TriggerPageShow   Trigger = "pageshow"
	TriggerFocus      Trigger = "focus"
	TriggerVisibility Trigger = "visibility"
	TriggerManual     Trigger = "manual"
	TriggerDelayed    Trigger = "delayed"
)

// Post-load resyncs, mirroring the short and long settle windows after a
// navigation (payment redirects in particular land slightly stale).
var delayedSyncs = []time.Duration{2 * time.Second, 5 * time.Second}

// Scheduler drives cart resyncs off lifecycle triggers. All pending work is
// cancellable: Stop (or cancelling the parent context) ends the delayed
// resyncs instead of leaving timers behind.
type Scheduler struct {
	refresher Refresher

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewScheduler(r Refresher) *Scheduler {
	return &Scheduler{refresher: r}
}

// Start fires the fixed post-load resyncs. Calling Start twice restarts the
// delayed sequence.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.cancel()
		s.wg.Wait()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true
	s.mu.Unlock()

	for _, d := range delayedSyncs {
		s.wg.Add(1)
		go func(d time.Duration) {
			defer s.wg.Done()
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
				s.sync(ctx, TriggerDelayed)
			}
		}(d)
	}
}

// OnTrigger resyncs immediately for a lifecycle event (page shown again,
// window focused, tab visible again, or an explicit request).
func (s *Scheduler) OnTrigger(ctx context.Context, t Trigger) {
	s.sync(ctx, t)
}

// Stop cancels pending delayed resyncs and waits for in-flight ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.started = false
}

func (s *Scheduler) sync(ctx context.Context, t Trigger) {
	if err := s.refresher.Refresh(ctx); err != nil {
		log.Printf("[sync] resync failed trigger=%s err=%v", t, err)
		return
	}
	log.Printf("[sync] resynced trigger=%s", t)
}
