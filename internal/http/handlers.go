package http

import (
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady reports the loaded collection sizes and middleware counters.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.repo.Snapshot()
	OK(w, map[string]any{
		"status":    "ready",
		"timestamp": s.now().Format(time.RFC3339),
		"checks": map[string]any{
			"repository": map[string]int{
				"categories": len(snap.Categories),
				"records":    len(snap.Records),
				"expenses":   len(snap.Expenses),
			},
			"rate_limiter": s.rateLimiter.GetMetrics(),
			"security":     s.detector.GetMetrics(),
			"requests":     s.tracer.GetMetrics(),
			"quotes":       s.quotes != nil,
		},
	})
}
