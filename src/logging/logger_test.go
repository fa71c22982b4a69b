package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger("/tmp/test-logs")
	if l == nil {
		t.Fatal("NewLogger() returned nil")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"Hello World", "Hello_World"},
		{"test@123", "test123"},
		{"a/b/c", "abc"},
		{"", "session"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func findLogFile(t *testing.T, dir string) string {
	t.Helper()
	var logFile string
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && strings.HasSuffix(path, ".jsonl") {
			logFile = path
		}
		return nil
	})
	if logFile == "" {
		t.Fatal("no log file found")
	}
	return logFile
}

func TestLoggerWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir)

	if err := l.LogStart("test-session"); err != nil {
		t.Fatalf("LogStart() error = %v", err)
	}
	if err := l.LogInput("test-session", "echo hello"); err != nil {
		t.Fatalf("LogInput() error = %v", err)
	}
	if err := l.LogOutput("test-session", "hello\n"); err != nil {
		t.Fatalf("LogOutput() error = %v", err)
	}
	if err := l.LogResize("test-session", 40, 120); err != nil {
		t.Fatalf("LogResize() error = %v", err)
	}
	if err := l.LogEnd("test-session"); err != nil {
		t.Fatalf("LogEnd() error = %v", err)
	}
	l.Close()

	f, err := os.Open(findLogFile(t, dir))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var types []EventType
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		if event.Session != "test-session" {
			t.Errorf("event session = %q, want %q", event.Session, "test-session")
		}
		types = append(types, event.Type)
	}

	want := []EventType{EventStart, EventInput, EventOutput, EventResize, EventEnd}
	if len(types) != len(want) {
		t.Fatalf("got %d events, want %d", len(types), len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestLogResizeData(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir)

	if err := l.LogResize("s", 24, 80); err != nil {
		t.Fatalf("LogResize() error = %v", err)
	}
	l.Close()

	data, err := os.ReadFile(findLogFile(t, dir))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	var event Event
	if err := json.Unmarshal(data[:len(data)-1], &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.Data != "80x24" {
		t.Errorf("resize data = %q, want %q", event.Data, "80x24")
	}
}

func TestCloseSession(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir)
	defer l.Close()

	if err := l.LogStart("a"); err != nil {
		t.Fatalf("LogStart() error = %v", err)
	}
	if err := l.CloseSession("a"); err != nil {
		t.Fatalf("CloseSession() error = %v", err)
	}
	// Logging again reopens a file rather than failing.
	if err := l.LogEnd("a"); err != nil {
		t.Fatalf("LogEnd() after CloseSession error = %v", err)
	}
}
