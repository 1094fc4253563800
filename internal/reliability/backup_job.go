package reliability

import (
	"context"
	"time"

	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/rs/zerolog"
)

// BackupTimeout bounds one scheduled backup run
const BackupTimeout = 15 * time.Minute

// BackupSettings reads the backup switches
type BackupSettings interface {
	Enabled(key string) bool
	Int(key string) int
}

// BackupJob uploads a backup and rotates old ones
type BackupJob struct {
	service  *BackupService
	settings BackupSettings
	log      zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *BackupService, settingsReader BackupSettings, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:  service,
		settings: settingsReader,
		log:      log.With().Str("job", "database_backup").Logger(),
	}
}

// Run executes the backup unless backups are switched off in settings
func (j *BackupJob) Run() error {
	if !j.settings.Enabled(settings.KeyBackupEnabled) {
		j.log.Debug().Msg("Backups disabled, skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), BackupTimeout)
	defer cancel()

	result, err := j.service.Run(ctx, j.settings.Int(settings.KeyBackupRetentionDays))
	if err != nil {
		j.log.Error().Err(err).Msg("Backup failed")
		return err
	}

	j.log.Info().
		Str("key", result.Key).
		Int64("size_bytes", result.SizeBytes).
		Int("pruned", result.Pruned).
		Msg("Backup completed")
	return nil
}

// Name returns the job name for scheduling and logging
func (j *BackupJob) Name() string {
	return "database_backup"
}
