package monitoring

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/isdelr/taskmaster-be/internal/metrics"
	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

// TaskCounter tallies stored tasks.
type TaskCounter interface {
	CountTasks(ctx context.Context) (models.TaskCounts, error)
}

// Snapshot is the most recent sample taken by a StatUpdater.
type Snapshot struct {
	SampledAt     time.Time         `json:"sampled_at"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	RSSBytes      uint64            `json:"rss_bytes"`
	CPUPercent    float64           `json:"cpu_percent"`
	NumThreads    int32             `json:"num_threads"`
	DatabaseBytes int64             `json:"database_bytes"`
	Tasks         models.TaskCounts `json:"tasks"`
}

// StatUpdater periodically samples process and store statistics into the
// metrics gauges and keeps the latest sample for the health endpoint.
type StatUpdater struct {
	tasks   TaskCounter
	metrics *metrics.Metrics
	dbPath  string
	proc    *process.Process
	started time.Time
	ticker  *time.Ticker
	done    chan bool

	mu   sync.RWMutex
	last Snapshot
}

// NewStatUpdater creates a new StatUpdater for the current process. dbPath
// may be empty or ":memory:", in which case the file size is not sampled.
func NewStatUpdater(tasks TaskCounter, m *metrics.Metrics, dbPath string) (*StatUpdater, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &StatUpdater{
		tasks:   tasks,
		metrics: m,
		dbPath:  dbPath,
		proc:    proc,
		started: time.Now(),
		done:    make(chan bool),
	}, nil
}

// Run starts the periodic updates.
func (su *StatUpdater) Run(interval time.Duration) {
	log.Info().Dur("interval", interval).Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(interval)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.Update(context.Background())

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.Update(context.Background())
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// Latest returns the most recent sample.
func (su *StatUpdater) Latest() Snapshot {
	su.mu.RLock()
	defer su.mu.RUnlock()
	return su.last
}

// Update takes one sample. Individual probe failures are logged and leave
// the corresponding fields at their zero value.
func (su *StatUpdater) Update(ctx context.Context) Snapshot {
	snap := Snapshot{
		SampledAt:     time.Now().UTC(),
		UptimeSeconds: time.Since(su.started).Seconds(),
	}

	if mem, err := su.proc.MemoryInfoWithContext(ctx); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not read process memory")
	} else {
		snap.RSSBytes = mem.RSS
	}
	if cpu, err := su.proc.PercentWithContext(ctx, 0); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not read process CPU")
	} else {
		snap.CPUPercent = cpu
	}
	if threads, err := su.proc.NumThreadsWithContext(ctx); err == nil {
		snap.NumThreads = threads
	}

	if su.dbPath != "" && su.dbPath != ":memory:" {
		if info, err := os.Stat(su.dbPath); err != nil {
			log.Warn().Err(err).Str("path", su.dbPath).Msg("StatUpdater: Could not stat database file")
		} else {
			snap.DatabaseBytes = info.Size()
		}
	}

	counts, err := su.tasks.CountTasks(ctx)
	if err != nil {
		log.Error().Err(err).Msg("StatUpdater: Failed to count tasks")
	} else {
		snap.Tasks = counts
	}

	if su.metrics != nil {
		su.metrics.ProcessCPU.Set(snap.CPUPercent)
		su.metrics.DatabaseBytes.Set(float64(snap.DatabaseBytes))
		su.metrics.Tasks.WithLabelValues("open").Set(float64(snap.Tasks.Open))
		su.metrics.Tasks.WithLabelValues("completed").Set(float64(snap.Tasks.Completed))
		su.metrics.Tasks.WithLabelValues("overdue").Set(float64(snap.Tasks.Overdue))
	}

	su.mu.Lock()
	su.last = snap
	su.mu.Unlock()
	return snap
}
