package api

import (
	"fmt"
	"net/http"

	"autotrader/internal/models"
)

func (s *Server) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.coord.GetConfig(r.Context())
	if err != nil {
		fmt.Printf("[API] Config query failed: %v\n", err)
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type configSetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleConfigSet(w http.ResponseWriter, r *http.Request) {
	var req configSetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Key == "" || req.Value == "" {
		writeError(w, http.StatusBadRequest, "key and value are required")
		return
	}

	if err := s.coord.SetConfig(r.Context(), req.Key, req.Value); err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": req.Key, "value": req.Value})
}

type controlRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Action {
	case "start":
		s.sched.Start()
		writeJSON(w, http.StatusOK, map[string]any{"action": "start", "worker_running": true})
	case "stop":
		s.sched.Stop()
		writeJSON(w, http.StatusOK, map[string]any{"action": "stop", "worker_running": false})
	case "trigger":
		s.sched.Trigger()
		writeJSON(w, http.StatusOK, map[string]any{"action": "trigger", "fired": true})
	default:
		writeError(w, http.StatusBadRequest, "action must be 'start', 'stop', or 'trigger'")
	}
}

func (s *Server) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.coord.ExportState(r.Context())
	if err != nil {
		fmt.Printf("[API] Export failed: %v\n", err)
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type restoreRequest struct {
	Data *models.Snapshot `json:"data"`
}

func (s *Server) handleBackupRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Data == nil {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	restored, err := s.coord.ImportState(r.Context(), req.Data)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"restored": restored})
}
