package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"job_fetcher/internal/domain"
)

// ErrLockHeld is returned by RunCycle when another replica holds the run lock.
var ErrLockHeld = errors.New("run lock held elsewhere")

// Runner executes one re-run over all active profiles.
type Runner interface {
	RunOnce(ctx context.Context) (*domain.RunStats, error)
}

// Locker guards a cycle across processes.
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}

type Config struct {
	Spec       string // cron spec, e.g. "@every 30m"
	RunTimeout time.Duration
	RunOnStart bool
}

type Scheduler struct {
	runner Runner
	locker Locker
	cfg    Config
	logger *slog.Logger
}

// NewScheduler creates a scheduler. locker may be nil.
func NewScheduler(runner Runner, locker Locker, cfg Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		locker: locker,
		cfg:    cfg,
		logger: logger.With("component", "scheduler"),
	}
}

// Start runs cycles on the cron spec until ctx is cancelled. Cycles never
// overlap; a tick arriving while a cycle is still running is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	cl := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(cl))

	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		_, _ = s.RunCycle(ctx)
	}))

	if _, err := c.AddJob(s.cfg.Spec, job); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Spec, err)
	}

	s.logger.Info("scheduler started", "spec", s.cfg.Spec, "run_timeout", s.cfg.RunTimeout)

	if s.cfg.RunOnStart {
		job.Run()
	}

	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

// RunCycle performs one bounded run under the lock, if configured.
func (s *Scheduler) RunCycle(ctx context.Context) (*domain.RunStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runCtx := ctx
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	if s.locker != nil {
		release, acquired, err := s.locker.Acquire(runCtx)
		if err != nil {
			s.logger.Error("acquire run lock failed", "error", err)
			return nil, err
		}
		if !acquired {
			s.logger.Info("cycle skipped, run lock held elsewhere")
			return nil, ErrLockHeld
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				s.logger.Warn("release run lock failed", "error", err)
			}
		}()
	}

	stats, err := s.runner.RunOnce(runCtx)
	if err != nil {
		s.logger.Error("rerun failed", "error", err)
		return stats, err
	}

	return stats, nil
}

// cronLogger routes cron's own logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
