package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/portailcloud/demoserver/internal/accesslog"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if lrw.status == 0 {
		lrw.status = code
	}
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}

func logRequests(next http.Handler, logger *slog.Logger, rec Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lrw, r)

		if lrw.status == 0 {
			lrw.status = http.StatusOK
		}
		req := accesslog.Request{
			Start:     start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    lrw.status,
			Bytes:     lrw.bytes,
			Duration:  time.Since(start),
			Remote:    r.RemoteAddr,
			UserAgent: r.UserAgent(),
		}
		logger.LogAttrs(r.Context(), slog.LevelInfo, accesslog.Message, req.Attrs()...)

		if rec == nil {
			return
		}
		if err := rec.Record(r.Context(), req); err != nil {
			logger.Warn("access log write failed", "error", err)
		}
	})
}
