package execution

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sweeper is the unit of work the scheduler drives on every tick.
type Sweeper interface {
	Sweep(ctx context.Context) (SweepStats, error)
}

// Scheduler runs the fill sweep on a fixed interval from a single goroutine,
// so sweeps never overlap. The first sweep runs immediately on Start.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	sweeps    atomic.Int64
	fills     atomic.Int64
	skips     atomic.Int64
	lastSweep atomic.Int64
}

// Stats is a point-in-time snapshot of scheduler activity.
type Stats struct {
	Sweeps    int64
	Fills     int64
	Skips     int64
	LastSweep time.Time
}

func NewScheduler(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{sweeper: sweeper, interval: interval, logger: logger}
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
	s.logger.Info("fill scheduler started", slog.Duration("interval", s.interval))
}

// Stop cancels the sweep loop and waits for the in-flight sweep to finish,
// giving up when ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("fill scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	stats, err := s.sweeper.Sweep(ctx)
	s.sweeps.Add(1)
	s.fills.Add(int64(stats.Filled))
	s.skips.Add(int64(stats.Skipped))
	s.lastSweep.Store(time.Now().UnixNano())
	if err != nil {
		s.logger.Error("sweep failed", slog.Any("error", err))
		return
	}
	if stats.Filled > 0 {
		s.logger.Info("sweep complete",
			slog.Int("scanned", stats.Scanned),
			slog.Int("filled", stats.Filled),
			slog.Int("skipped", stats.Skipped))
	}
}

func (s *Scheduler) Stats() Stats {
	var last time.Time
	if ns := s.lastSweep.Load(); ns > 0 {
		last = time.Unix(0, ns).UTC()
	}
	return Stats{
		Sweeps:    s.sweeps.Load(),
		Fills:     s.fills.Load(),
		Skips:     s.skips.Load(),
		LastSweep: last,
	}
}
