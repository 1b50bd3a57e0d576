package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRefresher struct{ n atomic.Int64 }

func (r *countingRefresher) Refresh(context.Context) error {
	r.n.Add(1)
	return nil
}

func TestOnTriggerRefreshesImmediately(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(r)

	s.OnTrigger(context.Background(), TriggerFocus)
	s.OnTrigger(context.Background(), TriggerPageShow)
	s.OnTrigger(context.Background(), TriggerVisibility)

	assert.Equal(t, int64(3), r.n.Load())
}

func TestStopCancelsDelayedResyncs(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(r)

	s.Start(context.Background())
	s.Stop()

	// the delayed resyncs were scheduled seconds out; stopping first means
	// they never fire
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), r.n.Load())
}

func TestParentContextCancelStopsScheduler(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(r)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()

	assert.Equal(t, int64(0), r.n.Load())
}

func TestStopWithoutStartIsSafe(t *testing.T) {
	s := NewScheduler(&countingRefresher{})
	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestRestartReplacesPendingWork(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(r)

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	s.Stop()

	assert.Equal(t, int64(0), r.n.Load())
}
