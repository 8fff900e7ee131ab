package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/portfolio-tracker/internal/database"
)

const (
	backupJobTimeout      = 10 * time.Minute
	maintenanceJobTimeout = 5 * time.Minute

	// lowDiskBytes triggers a warning; criticalDiskBytes fails the job
	lowDiskBytes      = 1 << 30
	criticalDiskBytes = 200 << 20
)

// BackupJob uploads a backup and rotates old ones
type BackupJob struct {
	service       *BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a scheduled backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupJobTimeout)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	deleted, err := j.service.RotateOldBackups(ctx, j.retentionDays)
	if err != nil {
		// The new backup is already uploaded
		j.log.Warn().Err(err).Msg("Backup rotation failed")
		return nil
	}
	if deleted > 0 {
		j.log.Info().Int("deleted", deleted).Msg("Rotated old backups")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *BackupJob) Name() string {
	return "backup"
}

// MaintenanceJob checks database integrity, truncates WAL files and watches disk space.
type MaintenanceJob struct {
	databases []*database.DB
	dataDir   string
	usage     func(path string) (*disk.UsageStat, error)
	log       zerolog.Logger
}

// NewMaintenanceJob creates a database maintenance job
func NewMaintenanceJob(databases []*database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		usage:     disk.Usage,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceJobTimeout)
	defer cancel()
	start := time.Now()

	for _, db := range j.databases {
		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Integrity check failed")
			return fmt.Errorf("maintenance of %s: %w", db.Name(), err)
		}

		// Not critical: the next checkpoint catches up
		if _, err := db.Conn().ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.log.Info().Dur("duration", time.Since(start)).Int("databases", len(j.databases)).Msg("Maintenance completed")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

func (j *MaintenanceJob) checkDiskSpace() error {
	usage, err := j.usage(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Msg("Disk usage unavailable")
		return nil
	}

	switch {
	case usage.Free < criticalDiskBytes:
		j.log.Error().Uint64("free_bytes", usage.Free).Msg("Disk space critically low")
		return fmt.Errorf("only %d bytes free in %s", usage.Free, j.dataDir)
	case usage.Free < lowDiskBytes:
		j.log.Warn().Uint64("free_bytes", usage.Free).Msg("Disk space running low")
	default:
		j.log.Debug().Uint64("free_bytes", usage.Free).Float64("used_percent", usage.UsedPercent).Msg("Disk space check")
	}
	return nil
}
