package server

import (
	"context"
	"net/http"
	"time"
)

// ComponentStatus represents the health of an individual component
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// Health is the full health check response
type Health struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth is the health of a single system component
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
}

// pinger is satisfied by the mongo store Manager; the memory store has no
// backend to probe and always counts as up.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth reports per-component health: the document store and the
// asset store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Version:    s.cfg.Version,
		Components: map[string]ComponentHealth{},
	}

	health.Components["store"] = s.checkStore(r.Context())
	health.Components["assets"] = s.checkAssets(r.Context())

	statusCode := http.StatusOK
	for _, c := range health.Components {
		if c.Status == ComponentStatusDown {
			health.Status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, statusCode, health)
}

// handleReady is the readiness probe: is the document store reachable?
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if c := s.checkStore(r.Context()); c.Status == ComponentStatusDown {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "store unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLive is the liveness probe: is the process running?
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) checkStore(ctx context.Context) ComponentHealth {
	p, ok := s.store.(pinger)
	if !ok {
		return ComponentHealth{Status: ComponentStatusUp, Message: "in-memory store"}
	}

	start := time.Now()
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.Ping(pctx); err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: "store ping failed: " + err.Error(),
		}
	}
	return ComponentHealth{
		Status:    ComponentStatusUp,
		LatencyMs: float64(time.Since(start).Milliseconds()),
	}
}

func (s *Server) checkAssets(ctx context.Context) ComponentHealth {
	start := time.Now()
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.assets.Check(pctx); err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: "asset store check failed: " + err.Error(),
		}
	}
	return ComponentHealth{
		Status:    ComponentStatusUp,
		LatencyMs: float64(time.Since(start).Milliseconds()),
	}
}
