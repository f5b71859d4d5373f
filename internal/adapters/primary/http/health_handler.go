package http

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	checks    map[string]ports.HealthChecker
	boards    ports.BoardRegistry
	startTime time.Time
	version   string
}

// NewHealthHandler creates a health handler probing each named dependency
// (the journal database and the GraphQL endpoint).
func NewHealthHandler(version string, checks map[string]ports.HealthChecker, boards ports.BoardRegistry) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		boards:    boards,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HandleLiveness reports that the process is up.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness reports whether every dependency answers.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.runChecks(r.Context())

	status, code := statusHealthy, http.StatusOK
	if !healthy {
		status, code = statusUnhealthy, http.StatusServiceUnavailable
	}

	WriteJSON(w, code, h.response(status, checks))
}

// HandleHealth is the detailed report for monitoring and debugging.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.runChecks(r.Context())

	status, code := statusHealthy, http.StatusOK
	if !healthy {
		status, code = statusDegraded, http.StatusServiceUnavailable
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := struct {
		HealthResponse
		Memory struct {
			Alloc      uint64 `json:"alloc_bytes"`
			TotalAlloc uint64 `json:"total_alloc_bytes"`
			Sys        uint64 `json:"sys_bytes"`
			NumGC      uint32 `json:"num_gc"`
		} `json:"memory"`
		Goroutines   int `json:"goroutines"`
		ActiveBoards int `json:"active_boards"`
	}{
		HealthResponse: h.response(status, checks),
		Goroutines:     runtime.NumGoroutine(),
	}
	response.Memory.Alloc = memStats.Alloc
	response.Memory.TotalAlloc = memStats.TotalAlloc
	response.Memory.Sys = memStats.Sys
	response.Memory.NumGC = memStats.NumGC
	if h.boards != nil {
		response.ActiveBoards = h.boards.Len()
	}

	WriteJSON(w, code, response)
}

func (h *HealthHandler) response(status string, checks map[string]Check) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}
}

func (h *HealthHandler) runChecks(ctx context.Context) (map[string]Check, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]Check, len(names))
	healthy := true
	for _, name := range names {
		check := checkDependency(ctx, h.checks[name])
		results[name] = check
		if check.Status != statusHealthy {
			healthy = false
		}
	}
	return results, healthy
}

func checkDependency(ctx context.Context, checker ports.HealthChecker) Check {
	if checker == nil {
		return Check{Status: statusUnhealthy, Message: "not configured"}
	}

	start := time.Now()
	err := checker.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  statusUnhealthy,
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  statusHealthy,
		Latency: latency.String(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}
