package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupJob runs the backup service on a schedule.
type BackupJob struct {
	service *BackupService
	timeout time.Duration
	log     zerolog.Logger
}

func NewBackupJob(service *BackupService, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service: service,
		timeout: 15 * time.Minute,
		log:     log.With().Str("job", "backup").Logger(),
	}
}

func (j *BackupJob) Name() string { return "backup" }

func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.service.CreateAndUpload(ctx); err != nil {
		j.log.Error().Err(err).Msg("Backup failed")
		return err
	}
	return nil
}
