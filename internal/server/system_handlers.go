package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/trafficpanel/internal/database"
	"github.com/aristath/trafficpanel/internal/metrics"
	"github.com/aristath/trafficpanel/internal/modules/connectivity"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SnapshotSource reports the controller connectivity
type SnapshotSource interface {
	Snapshot() connectivity.Snapshot
}

// JobCounter reports how many jobs are scheduled
type JobCounter interface {
	Entries() int
}

// SystemHandlers serves host and process status
type SystemHandlers struct {
	log     zerolog.Logger
	db      *database.DB
	monitor SnapshotSource
	jobs    JobCounter
	started time.Time
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string                `json:"status"`
	Version       string                `json:"version"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	CPUPercent    float64               `json:"cpu_percent"`
	MemoryPercent float64               `json:"memory_percent"`
	Controller    connectivity.Snapshot `json:"controller"`
	Database      *database.Stats       `json:"database,omitempty"`
	ScheduledJobs int                   `json:"scheduled_jobs"`
	LastChecked   string                `json:"last_checked"`
}

// NewSystemHandlers creates system handlers. Any dependency may be nil.
func NewSystemHandlers(log zerolog.Logger, db *database.DB, monitor SnapshotSource, jobs JobCounter, started time.Time) *SystemHandlers {
	return &SystemHandlers{
		log:     log.With().Str("handler", "system").Logger(),
		db:      db,
		monitor: monitor,
		jobs:    jobs,
		started: started,
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		Version:       metrics.Version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	if h.monitor != nil {
		response.Controller = h.monitor.Snapshot()
	}
	if h.jobs != nil {
		response.ScheduledJobs = h.jobs.Entries()
	}
	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			h.log.Warn().Err(err).Msg("Database health check failed")
			response.Status = "degraded"
		}
		stats, err := h.db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get database stats")
		} else {
			response.Database = stats
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode system status")
	}
}

// getSystemStats returns CPU and RAM usage percentages. The CPU sample
// window is kept short so the endpoint stays responsive.
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
