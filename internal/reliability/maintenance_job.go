package reliability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// Free-space thresholds for the data directory, in GB
const (
	DiskCriticalGB = 0.5
	DiskLowGB      = 5.0
	DiskWarningGB  = 10.0
)

// DiskStatus classifies free space on the data volume
type DiskStatus string

const (
	DiskOK       DiskStatus = "ok"
	DiskWarning  DiskStatus = "warning"
	DiskLow      DiskStatus = "low"
	DiskCritical DiskStatus = "critical"
)

// ClassifyDisk maps free gigabytes to a status
func ClassifyDisk(freeGB float64) DiskStatus {
	switch {
	case freeGB < DiskCriticalGB:
		return DiskCritical
	case freeGB < DiskLowGB:
		return DiskLow
	case freeGB < DiskWarningGB:
		return DiskWarning
	default:
		return DiskOK
	}
}

// MaintenanceReport is the outcome of one maintenance pass
type MaintenanceReport struct {
	Unhealthy  []string   `json:"unhealthy"`
	DiskStatus DiskStatus `json:"disk_status"`
	FreeGB     float64    `json:"free_gb"`
}

// MaintenanceJob checks database integrity, checkpoints WAL files and watches disk space
type MaintenanceJob struct {
	databases map[string]*database.DB
	dataDir   string
	usage     func(path string) (*disk.UsageStat, error)
	log       zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job over the named databases
func NewMaintenanceJob(databases map[string]*database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		usage:     disk.Usage,
		log:       log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := j.Check(ctx)
	if err != nil {
		return err
	}
	if len(report.Unhealthy) > 0 {
		return fmt.Errorf("unhealthy databases: %v", report.Unhealthy)
	}
	return nil
}

// Check runs the health checks and WAL checkpoints and reports disk space.
// A failed disk usage read is logged and leaves DiskStatus empty.
func (j *MaintenanceJob) Check(ctx context.Context) (MaintenanceReport, error) {
	report := MaintenanceReport{Unhealthy: []string{}}
	var errs []error

	for name, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Health check failed")
			report.Unhealthy = append(report.Unhealthy, name)
			continue
		}
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
			errs = append(errs, err)
		}
	}

	usage, err := j.usage(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Str("path", j.dataDir).Msg("Failed to read disk usage")
	} else {
		report.FreeGB = float64(usage.Free) / (1024 * 1024 * 1024)
		report.DiskStatus = ClassifyDisk(report.FreeGB)

		event := j.log.Info()
		switch report.DiskStatus {
		case DiskCritical:
			event = j.log.Error()
		case DiskLow, DiskWarning:
			event = j.log.Warn()
		}
		event.
			Float64("free_gb", report.FreeGB).
			Float64("used_percent", usage.UsedPercent).
			Str("status", string(report.DiskStatus)).
			Msg("Disk space checked")
	}

	return report, errors.Join(errs...)
}

// Name returns the job name for scheduling and logging
func (j *MaintenanceJob) Name() string {
	return "daily_maintenance"
}
