package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/database"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/snapshots"
)

// SystemHandlers serves operational status: process health, host resource
// usage and database sizes.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	databases []*database.DB
	runs      *snapshots.Repository
	startedAt time.Time
}

func NewSystemHandlers(log zerolog.Logger, dataDir string, databases []*database.DB, runs *snapshots.Repository) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		dataDir:   dataDir,
		databases: databases,
		runs:      runs,
		startedAt: time.Now(),
	}
}

// DatabaseStatus is one database's entry in the status response.
type DatabaseStatus struct {
	Name         string  `json:"name"`
	SizeMB       float64 `json:"size_mb"`
	WALSizeMB    float64 `json:"wal_size_mb"`
	PageCount    int64   `json:"page_count"`
	FreelistSize int64   `json:"freelist_pages"`
}

// SystemStatusResponse is the full status payload.
type SystemStatusResponse struct {
	Status        string           `json:"status"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	RAMPercent    float64          `json:"ram_percent"`
	DataDirSizeMB float64          `json:"data_dir_size_mb"`
	StoredRuns    int64            `json:"stored_runs"`
	Databases     []DatabaseStatus `json:"databases"`
}

// HandleStatus reports process and host health.
// GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		DataDirSizeMB: h.getDirSizeMB(h.dataDir),
		Databases:     make([]DatabaseStatus, 0, len(h.databases)),
	}

	if h.runs != nil {
		if count, err := h.runs.Count(); err == nil {
			response.StoredRuns = count
		}
	}

	for _, db := range h.databases {
		if db == nil {
			continue
		}
		entry := DatabaseStatus{Name: db.Name()}
		if stats, err := db.GetStats(); err == nil {
			entry.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
			entry.WALSizeMB = float64(stats.WALSizeBytes) / 1024 / 1024
			entry.PageCount = stats.PageCount
			entry.FreelistSize = stats.FreelistCount
		} else {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			response.Status = "degraded"
		}
		response.Databases = append(response.Databases, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode status response")
	}
}

// getSystemStats samples CPU over a short window so the endpoint stays fast.
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

func (h *SystemHandlers) getDirSizeMB(dirPath string) float64 {
	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}
	return float64(totalSize) / 1024 / 1024
}
