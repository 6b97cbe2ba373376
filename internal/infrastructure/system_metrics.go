package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemStats is a snapshot of process runtime statistics
type SystemStats struct {
	GoRoutines    int64
	MemoryUsage   int64
	MemorySystem  int64
	GCCount       uint32
	CPUCount      int
	ProcessUptime time.Duration
	Timestamp     time.Time
}

// CollectSystemStats reads the Go runtime statistics
func CollectSystemStats(startTime time.Time) SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SystemStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		MemoryUsage:   int64(memStats.Alloc),
		MemorySystem:  int64(memStats.Sys),
		GCCount:       memStats.NumGC,
		CPUCount:      runtime.NumCPU(),
		ProcessUptime: time.Since(startTime),
		Timestamp:     time.Now(),
	}
}

// FormatStats returns the stats in the shape served by the health endpoint
func (stats SystemStats) FormatStats() map[string]interface{} {
	return map[string]interface{}{
		"goroutines":      stats.GoRoutines,
		"memory_usage_mb": stats.MemoryUsage / 1024 / 1024,
		"memory_sys_mb":   stats.MemorySystem / 1024 / 1024,
		"gc_count":        stats.GCCount,
		"cpu_count":       stats.CPUCount,
		"uptime_seconds":  int64(stats.ProcessUptime.Seconds()),
	}
}

// RegisterSystemMetrics exposes goroutine count and uptime as observable gauges.
// Values are read at collection time, so no background goroutine is needed.
func RegisterSystemMetrics(meter metric.Meter, startTime time.Time) error {
	goRoutines, err := meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return fmt.Errorf("goroutine gauge: %w", err)
	}

	uptime, err := meter.Float64ObservableGauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("uptime gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(goRoutines, int64(runtime.NumGoroutine()))
		o.ObserveFloat64(uptime, time.Since(startTime).Seconds())
		return nil
	}, goRoutines, uptime)
	if err != nil {
		return fmt.Errorf("register system metrics callback: %w", err)
	}
	return nil
}
