package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"fleetdash/internal/apperr"
	"fleetdash/internal/logs"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const HeaderRequestID = "X-Request-ID"

type ctxKey struct{}

// RequestID — берём X-Request-ID клиента или генерируем uuid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// GetRequestID — id запроса из контекста ("" если RequestID не подключен).
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Recoverer — паника в хендлере превращается в 500 {"error":"Internal server error"}.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logs.Logger.WithFields(logrus.Fields{
					"request_id": GetRequestID(r.Context()),
					"path":       r.URL.Path,
				}).Errorf("panic: %v\n%s", rec, debug.Stack())
				apperr.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// LoggerMW — одна строка лога на запрос.
func LoggerMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		entry := logs.Logger.WithFields(logrus.Fields{
			"request_id": GetRequestID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"bytes":      sw.bytes,
			"duration":   time.Since(start).String(),
		})
		switch {
		case sw.status >= 500:
			entry.Error("http")
		case sw.status >= 400:
			entry.Warn("http")
		default:
			entry.Info("http")
		}
	})
}
