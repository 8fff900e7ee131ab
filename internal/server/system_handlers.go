package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/aristath/portfolio-tracker/internal/modules/trades"
	"github.com/aristath/portfolio-tracker/internal/reliability"
	"github.com/aristath/portfolio-tracker/internal/scheduler"
)

// BackupService creates and lists remote backups
type BackupService interface {
	CreateAndUploadBackup(ctx context.Context) (*reliability.BackupInfo, error)
	ListBackups(ctx context.Context) ([]reliability.BackupInfo, error)
}

// CacheStater reports the trades cache snapshot
type CacheStater interface {
	State() trades.CacheState
}

// JobLister lists scheduled jobs
type JobLister interface {
	Jobs() []scheduler.JobInfo
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status         string              `json:"status"`
	Version        string              `json:"version"`
	StartedAt      time.Time           `json:"started_at"`
	UptimeSeconds  int64               `json:"uptime_seconds"`
	GoVersion      string              `json:"go_version"`
	Goroutines     int                 `json:"goroutines"`
	CPUPercent     float64             `json:"cpu_percent"`
	MemoryPercent  float64             `json:"memory_percent"`
	Databases      []database.Stats    `json:"databases"`
	TradesCache    *trades.CacheState  `json:"trades_cache,omitempty"`
	Jobs           []scheduler.JobInfo `json:"jobs"`
	BackupsEnabled bool                `json:"backups_enabled"`
}

// SystemHandlers serves runtime status and backup operations
type SystemHandlers struct {
	databases []*database.DB
	cache     CacheStater
	jobs      JobLister
	backups   BackupService // nil when backups are disabled
	startedAt time.Time
	systemFn  func() (float64, float64)
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers. cache, jobs and backups may be nil.
func NewSystemHandlers(
	databases []*database.DB,
	cache CacheStater,
	jobs JobLister,
	backups BackupService,
	log zerolog.Logger,
) *SystemHandlers {
	return &SystemHandlers{
		databases: databases,
		cache:     cache,
		jobs:      jobs,
		backups:   backups,
		startedAt: time.Now(),
		systemFn:  getSystemStats,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemFn()

	resp := SystemStatusResponse{
		Status:         "healthy",
		Version:        Version,
		StartedAt:      h.startedAt,
		UptimeSeconds:  int64(time.Since(h.startedAt).Seconds()),
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		Databases:      []database.Stats{},
		Jobs:           []scheduler.JobInfo{},
		BackupsEnabled: h.backups != nil,
	}

	for _, db := range h.databases {
		stats, err := db.GetStats(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			resp.Status = "degraded"
			continue
		}
		resp.Databases = append(resp.Databases, *stats)
	}

	if h.cache != nil {
		state := h.cache.State()
		resp.TradesCache = &state
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs.Jobs()
	}

	writeJSON(w, http.StatusOK, resp, h.log)
}

// HandleTriggerBackup handles POST /api/system/backup
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeError(w, http.StatusServiceUnavailable, "Backups are not configured", h.log)
		return
	}

	info, err := h.backups.CreateAndUploadBackup(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		writeError(w, http.StatusInternalServerError, err.Error(), h.log)
		return
	}

	writeJSON(w, http.StatusOK, info, h.log)
}

// HandleListBackups handles GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeError(w, http.StatusServiceUnavailable, "Backups are not configured", h.log)
		return
	}

	backups, err := h.backups.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		writeError(w, http.StatusInternalServerError, err.Error(), h.log)
		return
	}
	if backups == nil {
		backups = []reliability.BackupInfo{}
	}

	writeJSON(w, http.StatusOK, backups, h.log)
}

// getSystemStats calculates CPU and RAM usage percentages
func getSystemStats() (float64, float64) {
	var cpuPercent, memPercent float64

	if values, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(values) > 0 {
		cpuPercent = values[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		memPercent = memStat.UsedPercent
	}

	return cpuPercent, memPercent
}
