// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edi/backend/internal/domain/shared"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const defaultJobTimeout = 10 * time.Minute

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
	JobStatusSkipped JobStatus = "SKIPPED"
)

// TaskFunc is the body of a job
type TaskFunc func(ctx context.Context, now time.Time) error

// JobState describes a registered job
type JobState struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Status    JobStatus  `json:"status"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Config holds scheduler settings
type Config struct {
	// JobTimeout bounds one run of a job
	JobTimeout time.Duration
	// Location is the time zone cron expressions are evaluated in
	Location *time.Location
}

// Scheduler wraps a gocron scheduler. When an idempotency store is set,
// each scheduled slot runs on one instance only.
type Scheduler struct {
	cron   gocron.Scheduler
	config Config
	store  shared.IdempotencyStore
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	jobs   map[string]*registeredJob
	ctx    context.Context
	cancel context.CancelFunc
}

type registeredJob struct {
	state JobState
	task  TaskFunc
	job   gocron.Job
}

// New creates a Scheduler. It does not run jobs until Start.
func New(cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	cron, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.Location),
		gocron.WithLogger(zapLogger{logger.Sugar()}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron,
		config: cfg,
		logger: logger,
		now:    time.Now,
		jobs:   make(map[string]*registeredJob),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// SetIdempotencyStore makes every scheduled slot run at most once across
// instances sharing store
func (s *Scheduler) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.store = store
}

// AddCronJob registers task under name on a five-field cron expression
func (s *Scheduler) AddCronJob(name, schedule string, task TaskFunc) error {
	if name == "" || task == nil {
		return errors.New("job name and task are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	rj := &registeredJob{
		state: JobState{Name: name, Schedule: schedule, Status: JobStatusPending},
		task:  task,
	}
	job, err := s.cron.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(func() { s.runScheduled(name) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule %q (%s): %w", name, schedule, err)
	}
	rj.job = job
	s.jobs[name] = rj
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("schedule", schedule))
	return nil
}

// Start begins running jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.Jobs())))
}

// Shutdown stops the scheduler and cancels running jobs
func (s *Scheduler) Shutdown() error {
	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// Jobs returns the state of every registered job
func (s *Scheduler) Jobs() []JobState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]JobState, 0, len(s.jobs))
	for _, rj := range s.jobs {
		state := rj.state
		if rj.job != nil {
			if next, err := rj.job.NextRun(); err == nil && !next.IsZero() {
				state.NextRunAt = &next
			}
		}
		out = append(out, state)
	}
	return out
}

// RunNow runs the named job in the caller's goroutine, bypassing the
// per-slot guard
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	_, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return s.run(ctx, name, s.now())
}

func (s *Scheduler) runScheduled(name string) {
	now := s.now()
	if s.store != nil {
		key := fmt.Sprintf("job:%s:%s", name, now.Truncate(time.Minute).UTC().Format(time.RFC3339))
		first, err := s.store.MarkProcessed(s.ctx, key, shared.DefaultIdempotencyTTL)
		if err != nil {
			s.logger.Warn("job slot check failed, running anyway", zap.String("job", name), zap.Error(err))
		} else if !first {
			s.setState(name, func(st *JobState) { st.Status = JobStatusSkipped })
			s.logger.Info("job slot already taken by another instance", zap.String("job", name))
			return
		}
	}
	_ = s.run(s.ctx, name, now)
}

func (s *Scheduler) run(ctx context.Context, name string, now time.Time) error {
	s.mu.RLock()
	rj := s.jobs[name]
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	s.setState(name, func(st *JobState) {
		st.Status = JobStatusRunning
		st.LastRunAt = &now
		st.Error = ""
	})
	start := time.Now()
	err := rj.task(ctx, now)
	if err != nil {
		s.setState(name, func(st *JobState) {
			st.Status = JobStatusFailed
			st.Error = err.Error()
		})
		s.logger.Error("job failed", zap.String("job", name), zap.Duration("duration", time.Since(start)), zap.Error(err))
		return err
	}
	s.setState(name, func(st *JobState) { st.Status = JobStatusSuccess })
	s.logger.Info("job completed", zap.String("job", name), zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *Scheduler) setState(name string, update func(*JobState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rj, ok := s.jobs[name]; ok {
		update(&rj.state)
	}
}

// zapLogger adapts zap to gocron.Logger
type zapLogger struct {
	l *zap.SugaredLogger
}

func (z zapLogger) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z zapLogger) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z zapLogger) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
func (z zapLogger) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }
