package health

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines         int    `json:"goroutines"`
	MemoryAllocMB      uint64 `json:"memory_alloc_mb"`
	MemoryTotalAllocMB uint64 `json:"memory_total_alloc_mb"`
	MemorySysMB        uint64 `json:"memory_sys_mb"`
	NumGC              uint32 `json:"num_gc"`
}

type RequestStats struct {
	TotalRequests     uint64 `json:"total_requests"`
	ActiveConnections int64  `json:"active_connections"`
}

type Stats struct {
	Requests RequestStats `json:"requests"`
	Runtime  RuntimeStats `json:"runtime"`
}

type HealthResponse struct {
	Status        Status                     `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Stats         Stats                      `json:"stats"`
	Components    map[string]ComponentStatus `json:"components"`
}

// Check is one readiness check. A critical check that is unhealthy makes
// the whole service unhealthy; any other failure only degrades it.
type Check struct {
	Name     string
	Critical bool
	Run      func(context.Context) ComponentStatus
}

type Handler struct {
	checks    []Check
	version   string
	startTime time.Time

	totalRequests     uint64
	activeConnections int64
}

func NewHandler(version string, checks ...Check) *Handler {
	return &Handler{
		checks:    checks,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
}

func (h *Handler) IncrementRequests() {
	atomic.AddUint64(&h.totalRequests, 1)
}

func (h *Handler) IncrementConnections() {
	atomic.AddInt64(&h.activeConnections, 1)
}

func (h *Handler) DecrementConnections() {
	atomic.AddInt64(&h.activeConnections, -1)
}

// Middleware counts requests and in-flight connections for the readiness
// report.
func (h *Handler) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			h.IncrementConnections()
			defer h.DecrementConnections()
			return next(c)
		}
	}
}

// Liveness godoc
// @Summary      Liveness check
// @Description  Reports that the process is serving requests
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readiness godoc
// @Summary      Readiness check
// @Description  Runs every component check concurrently and reports request and runtime stats
// @Tags         health
// @Produce      json
// @Success      200  {object}  health.HealthResponse
// @Failure      503  {object}  health.HealthResponse
// @Router       /health/ready [get]
func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(len(h.checks))
	for _, check := range h.checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(check.Name, check.Run)
	}
	wg.Wait()

	overallStatus := h.computeOverallStatus(components)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := HealthResponse{
		Status:        overallStatus,
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Stats: Stats{
			Requests: RequestStats{
				TotalRequests:     atomic.LoadUint64(&h.totalRequests),
				ActiveConnections: atomic.LoadInt64(&h.activeConnections),
			},
			Runtime: RuntimeStats{
				Goroutines:         runtime.NumGoroutine(),
				MemoryAllocMB:      memStats.Alloc / 1024 / 1024,
				MemoryTotalAllocMB: memStats.TotalAlloc / 1024 / 1024,
				MemorySysMB:        memStats.Sys / 1024 / 1024,
				NumGC:              memStats.NumGC,
			},
		},
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, resp)
}

func (h *Handler) computeOverallStatus(components map[string]ComponentStatus) Status {
	for _, check := range h.checks {
		if status, ok := components[check.Name]; ok && check.Critical && status.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}

	for _, status := range components {
		if status.Status != StatusHealthy {
			return StatusDegraded
		}
	}

	return StatusHealthy
}

// PingCheck wraps a function that returns nil when the dependency is
// reachable.
func PingCheck(name string, critical bool, ping func(context.Context) error) Check {
	return Check{
		Name:     name,
		Critical: critical,
		Run: func(ctx context.Context) ComponentStatus {
			start := time.Now()
			if err := ping(ctx); err != nil {
				return ComponentStatus{
					Status:    StatusUnhealthy,
					LatencyMs: time.Since(start).Milliseconds(),
					Error:     name + " unreachable",
				}
			}
			return ComponentStatus{
				Status:    StatusHealthy,
				LatencyMs: time.Since(start).Milliseconds(),
			}
		},
	}
}

func RedisCheck(client *redis.Client) Check {
	return Check{
		Name: "redis",
		Run: func(ctx context.Context) ComponentStatus {
			start := time.Now()
			if client == nil {
				return ComponentStatus{
					Status:    StatusUnhealthy,
					LatencyMs: time.Since(start).Milliseconds(),
					Error:     "redis not configured",
				}
			}

			if err := client.Ping(ctx).Err(); err != nil {
				return ComponentStatus{
					Status:    StatusUnhealthy,
					LatencyMs: time.Since(start).Milliseconds(),
					Error:     "ping failed",
				}
			}

			return ComponentStatus{
				Status:    StatusHealthy,
				LatencyMs: time.Since(start).Milliseconds(),
			}
		},
	}
}

// ConfigCheck reports a static configuration condition, such as a missing
// API key, without any network call.
func ConfigCheck(name string, critical bool, problem string) Check {
	return Check{
		Name:     name,
		Critical: critical,
		Run: func(context.Context) ComponentStatus {
			if problem != "" {
				return ComponentStatus{Status: StatusUnhealthy, Error: problem}
			}
			return ComponentStatus{Status: StatusHealthy}
		},
	}
}
