package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
)

const perfStatsInterval = 30 * time.Second

var meter = otel.Meter("attendance.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")
var browserProcessGauge, _ = meter.Int64Gauge("browser_processes")

// counts chrome processes on the host, pages that are never closed show
// up as growth here.
func countBrowserProcesses(ctx context.Context) (int64, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if isBrowserProcess(name) {
			count++
		}
	}
	return count, nil
}

func isBrowserProcess(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "chrome") || strings.Contains(name, "chromium")
}

func recordPerfStats(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
	goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))

	cpuUsage, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err == nil && len(cpuUsage) > 0 {
		cpuGauge.Record(ctx, cpuUsage[0])
	} else if err != nil {
		slog.WarnContext(ctx, "failed to read cpu usage", "err", err)
	}

	browsers, err := countBrowserProcesses(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to count browser processes", "err", err)
		return
	}
	browserProcessGauge.Record(ctx, browsers)
}

// InstrumentPerfStats records process and host stats until ctx is done.
func InstrumentPerfStats(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(perfStatsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				recordPerfStats(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}
