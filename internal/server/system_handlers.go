package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/reliability"
	"github.com/aristath/nutriplan/internal/scheduler"
	"github.com/aristath/nutriplan/internal/utils"
)

// SystemStatusResponse is the payload of GET /api/system/status
type SystemStatusResponse struct {
	StartedAt     time.Time         `json:"started_at"`
	Databases     []*database.Stats `json:"databases"`
	Unhealthy     []string          `json:"unhealthy"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	CPUPercent    float64           `json:"cpu_percent"`
	MemPercent    float64           `json:"mem_percent"`
	Goroutines    int               `json:"goroutines"`
	TotalSizeMB   float64           `json:"total_size_mb"`
	Backups       bool              `json:"backups_enabled"`
}

// SystemHandlers serves status, job triggers and backups
type SystemHandlers struct {
	databases map[string]*database.DB
	dataDir   string
	backup    *reliability.BackupService
	scheduler *scheduler.Scheduler
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers. backup and sched may be nil.
func NewSystemHandlers(
	databases map[string]*database.DB,
	dataDir string,
	backup *reliability.BackupService,
	sched *scheduler.Scheduler,
	log zerolog.Logger,
) *SystemHandlers {
	return &SystemHandlers{
		databases: databases,
		dataDir:   dataDir,
		backup:    backup,
		scheduler: sched,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleSystemStatus reports host load and database sizes
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		StartedAt:     h.startedAt,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemPercent:    memPercent,
		Goroutines:    runtime.NumGoroutine(),
		Databases:     []*database.Stats{},
		Unhealthy:     []string{},
		Backups:       h.backup != nil,
	}

	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	var totalBytes int64
	for _, name := range names {
		db := h.databases[name]

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		if err := db.Conn().PingContext(ctx); err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Database ping failed")
			response.Unhealthy = append(response.Unhealthy, name)
		}
		cancel()

		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to read database stats")
			continue
		}
		totalBytes += stats.SizeBytes + stats.WALSizeBytes
		response.Databases = append(response.Databases, stats)
	}
	response.TotalSizeMB = float64(totalBytes) / 1024 / 1024

	utils.WriteData(w, http.StatusOK, response, h.log)
}

// HandleListJobs lists the scheduled jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if h.scheduler != nil {
		names = h.scheduler.JobNames()
		sort.Strings(names)
	}
	utils.WriteData(w, http.StatusOK, map[string]interface{}{"jobs": names}, h.log)
}

// HandleRunJob runs a scheduled job immediately
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.scheduler == nil {
		writeStatus(w, http.StatusNotFound, "not_found", "no jobs are scheduled", h.log)
		return
	}

	started := time.Now()
	if err := h.scheduler.RunByName(name); err != nil {
		if errors.Is(err, scheduler.ErrUnknownJob) {
			writeStatus(w, http.StatusNotFound, "not_found", err.Error(), h.log)
			return
		}
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		writeStatus(w, http.StatusInternalServerError, "job_failed", err.Error(), h.log)
		return
	}

	utils.WriteData(w, http.StatusOK, map[string]interface{}{
		"job":         name,
		"duration_ms": time.Since(started).Milliseconds(),
	}, h.log)
}

// HandleListBackups lists stored backups, newest first
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		writeStatus(w, http.StatusServiceUnavailable, "backups_disabled", "backups are not configured", h.log)
		return
	}

	backups, err := h.backup.ListBackups(r.Context())
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, backups, h.log)
}

// HandleTriggerBackup creates and uploads a backup now, without rotation
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		writeStatus(w, http.StatusServiceUnavailable, "backups_disabled", "backups are not configured", h.log)
		return
	}

	result, err := h.backup.CreateAndUpload(r.Context())
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusCreated, result, h.log)
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the request fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func writeStatus(w http.ResponseWriter, status int, code, message string, log zerolog.Logger) {
	utils.WriteJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	}, log)
}
