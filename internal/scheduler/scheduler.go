package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper evicts idle sessions.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Scheduler manages scheduled housekeeping tasks.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a scheduler that sweeps idle sessions on spec (standard 5-field cron or
// a descriptor such as "@every 10m").
func New(spec string, sweeper Sweeper, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		spec:    spec,
		logger:  logger,
		now:     time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweepSessions); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("sweep_schedule", s.spec))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepSessions() {
	evicted := s.sweeper.Sweep(s.now())
	s.logger.Debug("session sweep finished", zap.Int("evicted", evicted))
}
