package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/database"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/rules"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/snapshots"
)

// RetentionRunSnapshots is how long completed runs are kept before the
// cleanup job trims them.
const RetentionRunSnapshots = 90 * 24 * time.Hour

// CleanupJob removes expired rule cache rows and trims old run snapshots.
// Scheduled daily.
type CleanupJob struct {
	rules *rules.Repository
	runs  *snapshots.Repository
	log   zerolog.Logger
}

func NewCleanupJob(rules *rules.Repository, runs *snapshots.Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		rules: rules,
		runs:  runs,
		log:   log.With().Str("job", "cleanup").Logger(),
	}
}

func (j *CleanupJob) Name() string { return "cleanup" }

func (j *CleanupJob) Run() error {
	expiredRules, err := j.rules.DeleteExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired zoning rules")
		return err
	}

	trimmedRuns, err := j.runs.TrimOlderThan(time.Now().Add(-RetentionRunSnapshots))
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to trim old run snapshots")
		return err
	}

	if expiredRules > 0 || trimmedRuns > 0 {
		j.log.Info().
			Int64("expired_rules", expiredRules).
			Int64("trimmed_runs", trimmedRuns).
			Msg("Cleanup completed")
	}
	return nil
}

// IntegrityCheckJob runs a quick integrity check on every database.
// Scheduled daily.
type IntegrityCheckJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

func NewIntegrityCheckJob(databases []*database.DB, log zerolog.Logger) *IntegrityCheckJob {
	return &IntegrityCheckJob{
		databases: databases,
		log:       log.With().Str("job", "integrity_check").Logger(),
	}
}

func (j *IntegrityCheckJob) Name() string { return "integrity_check" }

func (j *IntegrityCheckJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var firstErr error
	for _, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Integrity check failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		j.log.Debug().Str("database", db.Name()).Msg("Integrity check OK")
	}
	return firstErr
}

// WALCheckpointJob forces a passive WAL checkpoint on every database so WAL
// files do not grow unbounded between organic checkpoints. Scheduled hourly.
type WALCheckpointJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

func NewWALCheckpointJob(databases []*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

func (j *WALCheckpointJob) Name() string { return "wal_checkpoint" }

func (j *WALCheckpointJob) Run() error {
	for _, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.WALCheckpoint("PASSIVE"); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			continue
		}
	}
	return nil
}
