package api

import (
	"net/http"
	"time"
)

type statusResponse struct {
	Status        string     `json:"status"`
	Timestamp     string     `json:"timestamp"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Database      string     `json:"database"`
	WorkerRunning bool       `json:"worker_running"`
	LastPulseAt   *time.Time `json:"last_pulse_at,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := s.pool.Ping(r.Context()); err != nil {
		dbStatus = "disconnected"
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Database:      dbStatus,
		WorkerRunning: s.sched.Running(),
		LastPulseAt:   s.sched.LastPulseAt(),
	})
}
