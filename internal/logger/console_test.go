package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		logLevel   string
		wantLevels []string
		skipLevels []string
	}{
		{
			name:       "debug level logs everything",
			logLevel:   "debug",
			wantLevels: []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"},
		},
		{
			name:       "info level skips debug",
			logLevel:   "info",
			wantLevels: []string{"[INFO]", "[WARN]", "[ERROR]"},
			skipLevels: []string{"[DEBUG]"},
		},
		{
			name:       "warn level skips debug and info",
			logLevel:   "warn",
			wantLevels: []string{"[WARN]", "[ERROR]"},
			skipLevels: []string{"[DEBUG]", "[INFO]"},
		},
		{
			name:       "error level only logs errors",
			logLevel:   "error",
			wantLevels: []string{"[ERROR]"},
			skipLevels: []string{"[DEBUG]", "[INFO]", "[WARN]"},
		},
		{
			name:       "invalid level defaults to info",
			logLevel:   "bogus",
			wantLevels: []string{"[INFO]", "[WARN]", "[ERROR]"},
			skipLevels: []string{"[DEBUG]"},
		},
		{
			name:       "empty level defaults to info",
			logLevel:   "",
			wantLevels: []string{"[INFO]"},
			skipLevels: []string{"[DEBUG]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cl := NewConsoleLogger(&buf, tt.logLevel)

			cl.Debugf("debug message")
			cl.Infof("info message")
			cl.Warnf("warn message")
			cl.Errorf("error message")

			output := buf.String()
			for _, want := range tt.wantLevels {
				if !strings.Contains(output, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, output)
				}
			}
			for _, skip := range tt.skipLevels {
				if strings.Contains(output, skip) {
					t.Errorf("expected output NOT to contain %q, got:\n%s", skip, output)
				}
			}
		})
	}
}

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.Infof("digested %d files", 7)

	output := buf.String()
	if !strings.Contains(output, "digested 7 files") {
		t.Errorf("expected formatted message, got: %s", output)
	}
	// Timestamp prefix: "[HH:MM:SS] "
	if !strings.HasPrefix(output, "[") || len(output) < len("[00:00:00] ") {
		t.Errorf("expected timestamp prefix, got: %s", output)
	}
	// Buffer writers are never terminals, so no ANSI escapes
	if strings.Contains(output, "\x1b[") {
		t.Errorf("expected plain output for non-terminal writer, got: %q", output)
	}
}

func TestConsoleLoggerNilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "debug")

	// Should not panic
	cl.Debugf("message")
	cl.Infof("message")
	cl.Warnf("message")
	cl.Errorf("message")
}

func TestConsoleLoggerConcurrentUse(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				cl.Infof("goroutine %d message %d", n, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 200 {
		t.Errorf("expected 200 log lines, got %d", len(lines))
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", " warn ", "Error"} {
		if !ValidLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	for _, level := range []string{"", "trace", "verbose", "fatal"} {
		if ValidLevel(level) {
			t.Errorf("expected %q to be invalid", level)
		}
	}
}
