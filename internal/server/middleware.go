package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"jira-mcp/internal/logging"
	"jira-mcp/internal/types"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, echoes
// it in the response and attaches it to the request logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx, _ := logging.WithFields(r.Context(), log.Fields{logging.FieldRequestID: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recovery turns a panic into a 500 response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				entry(r).WithFields(log.Fields{
					"panic":            err,
					"path":             r.URL.Path,
					logging.Stacktrace: string(debug.Stack()),
				}).Error("panic recovered")
				respondJSON(w, http.StatusInternalServerError, types.NewError(nil, types.CodeInternalError, "Internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// AccessLog logs one line per request. Health checks and scrapes are
// logged at debug level.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		e := entry(r).WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		})
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			e.Debug("request")
			return
		}
		e.Info("request")
	})
}
