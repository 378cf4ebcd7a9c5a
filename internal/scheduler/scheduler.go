package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-log/internal/runner"
)

// Job is one update run. *runner.Runner satisfies it.
type Job interface {
	Run(ctx context.Context) (runner.Result, error)
}

// Recorder keeps run results. *store.MemoryStore satisfies it.
type Recorder interface {
	SaveRun(res runner.Result)
}

// Scheduler runs the update job on a cron schedule.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	recorder  Recorder
	schedule  string
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. schedule is a standard 5-field cron expression
// evaluated in UTC. timeout bounds each run.
func New(schedule string, timeout time.Duration, job Job, recorder Recorder, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// A run still in progress when the next tick fires makes that tick a no-op,
	// so only one run touches the document at a time.
	s.SingletonModeAll()
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Scheduler{
		scheduler: s,
		job:       job,
		recorder:  recorder,
		schedule:  schedule,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the job and starts the underlying scheduler. When
// runImmediately is set the first run happens at start instead of waiting
// for the next tick.
func (s *Scheduler) Start(runImmediately bool) error {
	job := s.scheduler.Cron(s.schedule)
	if runImmediately {
		job = job.StartImmediately()
	}
	if _, err := job.Do(s.runOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "schedule", s.schedule)
	return nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Debug("scheduler: running weather update")
	res, err := s.job.Run(ctx)
	if s.recorder != nil {
		s.recorder.SaveRun(res)
	}
	if err != nil {
		s.logger.Error("scheduler: run failed", "run_id", res.RunID, "error", err)
		return
	}
	s.logger.Debug("scheduler: run finished", "run_id", res.RunID)
}

// NextRun reports when the job fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
