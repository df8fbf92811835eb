package service

import (
	"context"
	"sync"
	"time"

	"thermostat_automation/internal/logger"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 15 * time.Minute

// Sweeper runs a planner sweep on a cron schedule. Overlapping ticks are skipped.
type Sweeper struct {
	cron    *cron.Cron
	planner Planning
	log     *logger.Logger

	mu  sync.Mutex
	ctx context.Context
}

func NewSweeper(spec string, planner Planning, log *logger.Logger) (*Sweeper, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Sweeper{planner: planner, log: log, ctx: context.Background()}
	cl := cronLogger{log: log}
	s.cron = cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start schedules sweeps until ctx is done or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one pass over all owners.
func (s *Sweeper) Sweep() {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(parent, sweepTimeout)
	defer cancel()

	report, err := s.planner.Run(ctx, Sweep{})
	if err != nil {
		s.log.Errorw("sweep_failed", "err", err)
		return
	}
	resp := report.Response()
	for owner, errs := range resp.ErrorsForUsers {
		s.log.Warnw("sweep_owner_errors", "owner_id", owner, "errors", errs)
	}
	s.log.Infow("sweep_done", "owners", len(report.Owners), "processed", resp.ProcessedForUsers)
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron_"+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron_"+msg, append(keysAndValues, "err", err)...)
}
