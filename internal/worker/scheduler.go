package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"air-demand-service/internal/platform/logging"
	"air-demand-service/internal/platform/obs"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron expressions. A run that is still going
// when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	log     *zap.Logger

	mutex sync.Mutex
	jobs  map[string]cron.EntryID
}

// NewScheduler creates a scheduler whose runs are bounded by timeout when positive.
func NewScheduler(timeout time.Duration) *Scheduler {
	log := logging.Named("scheduler")
	cl := cronLogger{log.Sugar()}

	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		timeout: timeout,
		log:     log,
		jobs:    make(map[string]cron.EntryID),
	}
}

// Schedule registers job under name, replacing a job of the same name.
func (s *Scheduler) Schedule(name, spec string, job Job) error {
	if name == "" {
		return errors.New("schedule: empty job name")
	}
	if job == nil {
		return fmt.Errorf("schedule %s: nil job", name)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		_ = s.run(context.Background(), name, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.jobs[name] = entryID

	s.log.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// RunNow executes job synchronously with the same logging and timeout as a scheduled run.
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) error {
	return s.run(ctx, name, job)
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) (err error) {
	ctx = obs.WithRequestID(ctx, uuid.NewString())
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	defer obs.Time(ctx, "job."+name)(&err)

	s.log.Info("executing job", zap.String("job", name), zap.String("req_id", obs.RequestID(ctx)))
	if err := job(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Error(err))
		return err
	}
	return nil
}

// Next returns the next activation of a scheduled job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
