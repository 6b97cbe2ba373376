package services

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"bodylab/internal/infrastructure"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Name    string
	Version string
	Commit  string
	Date    string
}

// ReadinessCheck reports whether one dependency is ready to serve traffic
type ReadinessCheck func(ctx context.Context) ServiceHealth

// HealthService provides health check functionality
type HealthService struct {
	build     BuildInfo
	startTime time.Time
	logger    *slog.Logger

	mu     sync.RWMutex
	checks map[string]ReadinessCheck
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service for the given build
func NewHealthService(build BuildInfo, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("name", build.Name),
		slog.String("version", build.Version),
		slog.String("commit", build.Commit))

	return &HealthService{
		build:     build,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
		checks:    make(map[string]ReadinessCheck),
	}
}

// RegisterCheck adds a named readiness check. Registering a name twice
// replaces the earlier check.
func (hs *HealthService) RegisterCheck(name string, check ReadinessCheck) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.checks[name] = check
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.build.Version,
		Runtime:   infrastructure.CollectSystemStats(hs.startTime).FormatStats(),
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck runs every registered check. The service is ready only
// when all of them are.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.build.Version,
		Services:  make(map[string]interface{}),
	}

	hs.mu.RLock()
	names := make([]string, 0, len(hs.checks))
	for name := range hs.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]ReadinessCheck, len(names))
	for i, name := range names {
		checks[i] = hs.checks[name]
	}
	hs.mu.RUnlock()

	for i, name := range names {
		result := checks[i](ctx)
		status.Services[name] = result
		if result.Status != "ready" {
			status.Status = "not_ready"
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "readiness check failed", slog.Any("services", status.Services))
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.build.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"name":         hs.build.Name,
		"version":      hs.build.Version,
		"commit":       hs.build.Commit,
		"build_date":   hs.build.Date,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// Ready is a ReadinessCheck that always passes
func Ready(message string) ReadinessCheck {
	return func(context.Context) ServiceHealth {
		return ServiceHealth{Status: "ready", Message: message}
	}
}
