package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component
type ComponentStatus string

const (
	ComponentStatusUp       ComponentStatus = "up"
	ComponentStatusDown     ComponentStatus = "down"
	ComponentStatusDegraded ComponentStatus = "degraded"
)

// slowCheck marks a component degraded when its ping takes longer.
const slowCheck = time.Second

// Health represents the complete health check response
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Commit     string                     `json:"commit,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents the health of a single system component
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms"`
}

// handleHealth reports every dependency. Degraded still answers 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth(r.Context())

	status := http.StatusOK
	if health.Status == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// handleReady is the readiness check for load balancers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth(r.Context())

	if health.Status == HealthStatusUnhealthy {
		var down []string
		for name, c := range health.Components {
			if c.Status == ComponentStatusDown {
				down = append(down, name)
			}
		}
		sort.Strings(down)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"down":   down,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) checkHealth(ctx context.Context) Health {
	health := Health{
		Timestamp:  time.Now().UTC(),
		Version:    s.cfg.Build.Version,
		Commit:     s.cfg.Build.Commit,
		Components: make(map[string]ComponentHealth, len(s.cfg.Checks)),
	}
	for name, p := range s.cfg.Checks {
		health.Components[name] = checkComponent(ctx, p)
	}
	health.Status = determineOverallHealth(health.Components)
	return health
}

func checkComponent(ctx context.Context, p Pinger) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	c := ComponentHealth{LatencyMs: float64(latency.Microseconds()) / 1000}
	switch {
	case err != nil:
		c.Status = ComponentStatusDown
		c.Message = err.Error()
	case latency > slowCheck:
		c.Status = ComponentStatusDegraded
		c.Message = "latency high"
	default:
		c.Status = ComponentStatusUp
	}
	return c
}

// determineOverallHealth calculates overall health from component statuses
func determineOverallHealth(components map[string]ComponentHealth) HealthStatus {
	var down, degraded int
	for _, c := range components {
		switch c.Status {
		case ComponentStatusDown:
			down++
		case ComponentStatusDegraded:
			degraded++
		}
	}

	switch {
	case down > 0:
		return HealthStatusUnhealthy
	case degraded > 0:
		return HealthStatusDegraded
	}
	return HealthStatusHealthy
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
