package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper advances rental statuses. *ledger.Ledger satisfies it.
type Sweeper interface {
	SweepRentals(ctx context.Context) (activated, overdue int, err error)
}

const jobTimeout = 5 * time.Minute

// Scheduler runs the nightly maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *zap.Logger
}

// New registers the rental sweep on spec, a six-field cron expression
// (seconds first) evaluated in loc.
func New(spec string, loc *time.Location, sweeper Sweeper, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
		),
		sweeper: sweeper,
		logger:  logger.Named("scheduler"),
	}

	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, fmt.Errorf("failed to register rental sweep %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.RunSweep(ctx); err != nil {
		s.logger.Error("rental sweep failed", zap.Error(err))
	}
}

// RunSweep runs the rental sweep once, outside the schedule.
func (s *Scheduler) RunSweep(ctx context.Context) error {
	activated, overdue, err := s.sweeper.SweepRentals(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("rental sweep finished", zap.Int("activated", activated), zap.Int("overdue", overdue))
	return nil
}

// Next reports when the sweep runs next. It is the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Time("next_sweep", s.Next()))
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
