// Package accesslog describes completed HTTP requests and writes them to an
// append-only NDJSON file.
//
// The same attributes feed both the process log and the file: the server
// middleware logs Request.Attrs through slog, and Logger renders them with a
// slog JSON handler, one object per line.
package accesslog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Message is the record message for every request line.
const Message = "request"

// Request describes one completed request.
type Request struct {
	Start     time.Time
	Method    string
	Path      string
	Status    int
	Bytes     int
	Duration  time.Duration
	Remote    string
	UserAgent string
}

// Attrs returns the request as slog attributes. Empty optional fields are
// left out.
func (r Request) Attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.Path),
		slog.Int("status", r.Status),
		slog.Int("bytes", r.Bytes),
		slog.Float64("duration_ms", float64(r.Duration.Microseconds())/1000),
	}
	if r.Remote != "" {
		attrs = append(attrs, slog.String("remote", r.Remote))
	}
	if r.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", r.UserAgent))
	}
	return attrs
}

// Logger appends request records to a file.
type Logger struct {
	file    *os.File
	handler slog.Handler
}

// Open creates or opens an access log file for appending.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening access log: %w", err)
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Every line is a request; the level carries nothing.
			if len(groups) == 0 && a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return &Logger{file: f, handler: h}, nil
}

// Record writes req as one JSON line stamped with its start time.
func (l *Logger) Record(ctx context.Context, req Request) error {
	ts := req.Start
	if ts.IsZero() {
		ts = time.Now()
	}
	rec := slog.NewRecord(ts.UTC(), slog.LevelInfo, Message, 0)
	rec.AddAttrs(req.Attrs()...)
	if err := l.handler.Handle(ctx, rec); err != nil {
		return fmt.Errorf("writing access record: %w", err)
	}
	return nil
}

// Close closes the access log file.
func (l *Logger) Close() error {
	return l.file.Close()
}
