package execution

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int64
	stats SweepStats
}

func (c *countingSweeper) Sweep(ctx context.Context) (SweepStats, error) {
	c.calls.Add(1)
	return c.stats, nil
}

func TestSchedulerSweepsImmediately(t *testing.T) {
	sweeper := &countingSweeper{stats: SweepStats{Scanned: 2, Filled: 1, Skipped: 1}}
	s := NewScheduler(sweeper, time.Hour, discardLogger())

	s.Start(context.Background())
	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no sweep ran before the first tick")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	stats := s.Stats()
	if stats.Sweeps < 1 {
		t.Errorf("sweeps = %d, want at least 1", stats.Sweeps)
	}
	if stats.Fills < 1 || stats.Skips < 1 {
		t.Errorf("fills/skips = %d/%d, want at least 1 each", stats.Fills, stats.Skips)
	}
	if stats.LastSweep.IsZero() {
		t.Error("last sweep time not recorded")
	}
}

func TestSchedulerTicks(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper, 5*time.Millisecond, discardLogger())

	s.Start(context.Background())
	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d sweeps ran", sweeper.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

type blockingSweeper struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSweeper) Sweep(ctx context.Context) (SweepStats, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return SweepStats{}, nil
}

func TestSchedulerStopTimesOutOnStuckSweep(t *testing.T) {
	sweeper := &blockingSweeper{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(sweeper, time.Hour, discardLogger())

	s.Start(context.Background())
	<-sweeper.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); err == nil {
		t.Error("Stop returned nil while a sweep was stuck")
	}

	close(sweeper.release)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop after release: %v", err)
	}
}

func TestSchedulerStatsBeforeStart(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, time.Hour, discardLogger())
	stats := s.Stats()
	if stats.Sweeps != 0 || !stats.LastSweep.IsZero() {
		t.Errorf("stats before start = %+v, want zero", stats)
	}
}
