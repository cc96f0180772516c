package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"autotrader/internal/scheduler"
	"autotrader/internal/trader"
)

type Server struct {
	pool       *pgxpool.Pool
	coord      *trader.Coordinator
	sched      *scheduler.PulseScheduler
	httpServer *http.Server
	apiKey     string
	startedAt  time.Time
}

func NewServer(pool *pgxpool.Pool, coord *trader.Coordinator, sched *scheduler.PulseScheduler, port int, apiKey, corsOrigin string) *Server {
	s := &Server{
		pool:      pool,
		coord:     coord,
		sched:     sched,
		apiKey:    apiKey,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()

	// Status (no auth required)
	mux.HandleFunc("GET /rpc/status", s.handleStatus)

	// Trade lifecycle
	mux.HandleFunc("POST /rpc/decision", s.handleDecision)
	mux.HandleFunc("POST /rpc/sign", s.handleSign)
	mux.HandleFunc("GET /rpc/history", s.handleHistory)
	mux.HandleFunc("POST /rpc/history", s.handleHistory)
	mux.HandleFunc("GET /rpc/stats", s.handleStats)
	mux.HandleFunc("GET /rpc/portfolio", s.handlePortfolio)

	// Config + control
	mux.HandleFunc("GET /rpc/config", s.handleConfigGet)
	mux.HandleFunc("POST /rpc/config", s.handleConfigSet)
	mux.HandleFunc("POST /rpc/control", s.handleControl)

	// Backup
	mux.HandleFunc("POST /rpc/backup/export", s.handleBackupExport)
	mux.HandleFunc("POST /rpc/backup/restore", s.handleBackupRestore)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] RPC server started on http://localhost%s\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/rpc/status" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeCoordinatorError maps the coordinator's error kinds onto HTTP.
func writeCoordinatorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trader.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, trader.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, trader.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
