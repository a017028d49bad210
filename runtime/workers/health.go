package workers

import (
	"context"
	"log/slog"
	"org-relay/contract"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthWorker periodically logs the relay's own resource usage and the number of live connections.
type HealthWorker struct {
	log            *slog.Logger
	relay          contract.IRelay
	metricInterval time.Duration
	pid            int32
}

func NewHealthWorker(log *slog.Logger, relay contract.IRelay, metricInterval time.Duration) *HealthWorker {
	return &HealthWorker{
		log:            log,
		relay:          relay,
		metricInterval: metricInterval,
		pid:            int32(os.Getpid()),
	}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			w.report(proc)
		}
	}
}

func (w *HealthWorker) report(proc *process.Process) {
	attrs := []any{"connections", w.relay.Count()}

	if cpu, err := proc.CPUPercent(); err != nil {
		w.log.Debug("Error while finding process cpu usage", "error", err)
	} else {
		attrs = append(attrs, "cpu_percent", cpu)
	}
	if mem, err := proc.MemoryInfo(); err != nil {
		w.log.Debug("Error while finding process memory usage", "error", err)
	} else {
		attrs = append(attrs, "rss_bytes", mem.RSS)
	}
	if threads, err := proc.NumThreads(); err == nil {
		attrs = append(attrs, "threads", threads)
	}

	w.log.Info("Relay health", attrs...)
}
