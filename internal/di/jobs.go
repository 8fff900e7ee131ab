package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/clientdata"
	"github.com/aristath/portfolio-tracker/internal/config"
	"github.com/aristath/portfolio-tracker/internal/modules/trades"
	"github.com/aristath/portfolio-tracker/internal/reliability"
)

// RegisterJobs registers background jobs with the scheduler.
// The scheduler is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		CacheCleanup: clientdata.NewCleanupJob(container.ClientDataRepo, log),
		TradesWarmup: trades.NewWarmupJob(container.TradesCache, log),
		Maintenance:  reliability.NewMaintenanceJob(container.Databases(), cfg.DataDir, log),
	}

	if err := container.Scheduler.AddJob(cfg.Jobs.CacheCleanupSchedule, instances.CacheCleanup); err != nil {
		return nil, err
	}
	if err := container.Scheduler.AddJob(cfg.Jobs.TradesWarmupSchedule, instances.TradesWarmup); err != nil {
		return nil, err
	}
	if err := container.Scheduler.AddJob(cfg.Jobs.MaintenanceSchedule, instances.Maintenance); err != nil {
		return nil, err
	}

	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
		if err := container.Scheduler.AddJob(cfg.Backup.Schedule, instances.Backup); err != nil {
			return nil, err
		}
	}

	log.Info().Int("jobs", len(container.Scheduler.Jobs())).Msg("Jobs registered")
	return instances, nil
}
