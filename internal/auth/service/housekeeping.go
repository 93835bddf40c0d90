package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops expired entries from a store that has no native expiry.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int, error)
}

// HousekeepingService periodically sweeps expired refresh tokens and
// revocations out of in-process stores. Redis expires keys by itself and
// does not need it.
type HousekeepingService struct {
	Sweepers []Sweeper
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(logger *slog.Logger, interval time.Duration, sweepers ...Sweeper) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Sweepers: sweepers,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs every sweeper once. A failing sweeper doesn't stop the rest.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	var total int
	for _, sw := range s.Sweepers {
		n, err := sw.DeleteExpired(ctx)
		if err != nil {
			s.Logger.Error("housekeeping sweep failed", "error", err)
			continue
		}
		total += n
	}

	s.Logger.Debug("housekeeping cleanup completed", "deleted", total)
}
