package accesslog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var out []map[string]any
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		out = append(out, m)
	}
	return out
}

func TestRecordWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	ts := time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)
	ctx := context.Background()

	l.Record(ctx, Request{
		Start:    ts,
		Method:   "GET",
		Path:     "/",
		Status:   200,
		Bytes:    3120,
		Duration: 1500 * time.Microsecond,
		Remote:   "10.0.0.7:51234",
	})
	l.Record(ctx, Request{
		Start:  ts.Add(time.Second),
		Method: "GET",
		Path:   "/missing.css",
		Status: 404,
	})

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	first := lines[0]
	if first["msg"] != Message {
		t.Errorf("msg = %v, want %q", first["msg"], Message)
	}
	if first["path"] != "/" {
		t.Errorf("path = %v, want /", first["path"])
	}
	if first["status"] != float64(200) {
		t.Errorf("status = %v, want 200", first["status"])
	}
	if first["duration_ms"] != 1.5 {
		t.Errorf("duration_ms = %v, want 1.5", first["duration_ms"])
	}
	if first["remote"] != "10.0.0.7:51234" {
		t.Errorf("remote = %v, want 10.0.0.7:51234", first["remote"])
	}
	if got, err := time.Parse(time.RFC3339Nano, first["time"].(string)); err != nil || !got.Equal(ts) {
		t.Errorf("time = %v, want %v", first["time"], ts)
	}
	if _, ok := first["level"]; ok {
		t.Error("level should not be written")
	}

	second := lines[1]
	if second["status"] != float64(404) {
		t.Errorf("status = %v, want 404", second["status"])
	}
	if _, ok := second["user_agent"]; ok {
		t.Error("empty user_agent should be omitted")
	}
	if _, ok := second["remote"]; ok {
		t.Error("empty remote should be omitted")
	}
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	before := time.Now().UTC().Add(-time.Second)
	if err := l.Record(context.Background(), Request{Method: "GET", Path: "/index.html", Status: 200}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	lines := readLines(t, path)
	ts, err := time.Parse(time.RFC3339Nano, lines[0]["time"].(string))
	if err != nil {
		t.Fatalf("parsing time: %v", err)
	}
	if ts.Before(before) {
		t.Errorf("timestamp %v not defaulted to now", ts)
	}
}

func TestAttrsOmitEmptyOptionalFields(t *testing.T) {
	attrs := Request{Method: "HEAD", Path: "/", Status: 200}.Attrs()
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	want := "method,path,status,bytes,duration_ms"
	if got := strings.Join(keys, ","); got != want {
		t.Errorf("keys = %s, want %s", got, want)
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	ctx := context.Background()

	l1, _ := Open(path)
	l1.Record(ctx, Request{Method: "GET", Path: "/a"})
	l1.Close()

	l2, _ := Open(path)
	l2.Record(ctx, Request{Method: "GET", Path: "/b"})
	l2.Close()

	if lines := readLines(t, path); len(lines) != 2 {
		t.Fatalf("expected 2 lines after reopen, got %d", len(lines))
	}
}

func TestOpenFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600, got %o", perm)
	}
}

func TestRecordConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Record(context.Background(), Request{Method: "GET", Path: fmt.Sprintf("/file-%d", i), Status: 200})
		}(i)
	}
	wg.Wait()
	l.Close()

	if lines := readLines(t, path); len(lines) != 50 {
		t.Fatalf("expected 50 lines, got %d", len(lines))
	}
}

func TestRecordAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Close()

	if err := l.Record(context.Background(), Request{Method: "GET", Path: "/"}); err == nil {
		t.Fatal("expected error writing to a closed file")
	}
}

func TestOpenBadPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "access.log")); err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}
