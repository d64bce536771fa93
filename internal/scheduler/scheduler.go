// Package scheduler runs recurring maintenance jobs on cron schedules:
// cache cleanup, database integrity checks, WAL checkpoints and backups.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named unit of recurring work.
type Job interface {
	Name() string
	Run() error
}

// Scheduler wraps a cron runner and tracks registered jobs by name.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]Job
	log  zerolog.Logger
}

func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make(map[string]Job),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// AddJob registers a job on a cron spec. Job panics are contained so one
// broken job cannot take the scheduler down.
func (s *Scheduler) AddJob(spec string, job Job) error {
	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}

	s.jobs[job.Name()] = job
	s.log.Info().Str("job", job.Name()).Str("spec", spec).Msg("Job scheduled")
	return nil
}

// RunNow executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}
	s.runJob(job)
	return nil
}

// JobNames lists the registered jobs.
func (s *Scheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("job", job.Name()).Interface("panic", r).Msg("Job panicked")
		}
	}()

	started := time.Now()
	if err := job.Run(); err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		return
	}
	s.log.Debug().
		Str("job", job.Name()).
		Dur("elapsed", time.Since(started)).
		Msg("Job completed")
}

// Start begins running schedules in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}
