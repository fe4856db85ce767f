package debug

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogGoroutines(t *testing.T) {
	var buf bytes.Buffer
	logGoroutines(slog.New(slog.NewJSONHandler(&buf, nil)))
	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["msg"] != "goroutine-stacks" {
		t.Fatalf("unexpected log %v", lines)
	}
	if g, ok := lines[0]["goroutines"].(float64); !ok || g < 1 {
		t.Fatalf("goroutine count missing: %v", lines[0])
	}
}

func TestLogMemStats(t *testing.T) {
	var buf bytes.Buffer
	logged := false
	logMemStats(slog.New(slog.NewJSONHandler(&buf, nil)), &logged)
	var found bool
	for _, l := range decodeLines(t, &buf) {
		if l["msg"] == "memstats" {
			found = true
			if _, ok := l["heap_alloc"]; !ok {
				t.Fatalf("heap stats missing: %v", l)
			}
		}
	}
	if !found {
		t.Fatalf("memstats line missing")
	}
}
