// Package server exposes the MCP handler over HTTP for many tenants at
// once. Each request names its tenant with the X-API-Key header.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"jira-mcp/internal/config"
	"jira-mcp/internal/handler"
	"jira-mcp/internal/logging"
	"jira-mcp/internal/types"
)

const (
	APIKeyHeader    = "X-API-Key"
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	cfg config.ServerConfig
	mcp *handler.Handler
}

func New(cfg config.ServerConfig, mcp *handler.Handler) *Server {
	return &Server{cfg: cfg, mcp: mcp}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /mcp", s.handleMCP)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	h = AccessLog(h)
	h = Recovery(h)
	h = RequestID(h)

	if len(s.cfg.CorsOrigins) == 0 {
		return h
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CorsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", APIKeyHeader, RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return corsHandler.Handler(h)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", s.cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "HTTP server failed")
	case <-ctx.Done():
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown")
	}
	return nil
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get(APIKeyHeader)
	if apiKey == "" {
		respondJSON(w, http.StatusUnauthorized, types.NewError(nil, handler.CodeUnauthorized, "Unauthorized: missing "+APIKeyHeader+" header"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, types.NewError(nil, types.CodeInvalidRequest, "Request body too large"))
			return
		}
		respondJSON(w, http.StatusBadRequest, types.NewError(nil, types.CodeParseError, "Parse error"))
		return
	}

	resp := s.mcp.HandleMessage(r.Context(), apiKey, body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	status := http.StatusOK
	if resp.Error != nil {
		switch resp.Error.Code {
		case handler.CodeUnauthorized:
			status = http.StatusUnauthorized
		case handler.CodeRegistryUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, status, resp)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

// entry returns the request-scoped logger.
func entry(r *http.Request) *log.Entry {
	return logging.FromContext(r.Context())
}
