package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestVfHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "created project",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tcreated project\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "reordered storyboards",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\treordered storyboards\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "set default model",
			attrs:   []slog.Attr{slog.String("kind", "image"), slog.Int("model_id", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\tset default model\tkind=image\tmodel_id=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &vfHandler{sinks: []logSink{{w: &buf, min: slog.LevelDebug}}, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestVfHandler_SinkLevels(t *testing.T) {
	var file, stderr bytes.Buffer
	h := &vfHandler{
		sinks: []logSink{{w: &file, min: slog.LevelInfo}, {w: &stderr, min: slog.LevelWarn}},
		opID:  "op",
	}
	logger := slog.New(h)

	logger.Debug("dropped")
	logger.Info("file only")
	logger.Warn("both")

	if strings.Contains(file.String(), "dropped") || strings.Contains(stderr.String(), "dropped") {
		t.Error("debug record should be dropped everywhere")
	}
	if !strings.Contains(file.String(), "file only") || strings.Contains(stderr.String(), "file only") {
		t.Errorf("info record routed wrong: file=%q stderr=%q", file.String(), stderr.String())
	}
	if !strings.Contains(file.String(), "both") || !strings.Contains(stderr.String(), "both") {
		t.Errorf("warn record routed wrong: file=%q stderr=%q", file.String(), stderr.String())
	}
}

func TestVfHandler_Enabled(t *testing.T) {
	h := &vfHandler{sinks: []logSink{{min: slog.LevelInfo}, {min: slog.LevelError}}}

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, true},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestVfHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &vfHandler{sinks: []logSink{{w: &buf, min: slog.LevelDebug}}, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "importer")}).(*vfHandler)
	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}

	r := slog.NewRecord(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), slog.LevelInfo, "imported", 0)
	r.AddAttrs(slog.Int64("project_id", 3))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"a=1", "component=importer", "project_id=3"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %s", got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("writes to file and filters stderr", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "log")
		var stderr bytes.Buffer

		logger, f, err := newLogger(dir, "debug", false, &stderr, "test-op")
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		logger.Debug("quiet")
		logger.Error("loud")
		f.Close()

		data, err := os.ReadFile(filepath.Join(dir, LogFileName))
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		if !strings.Contains(string(data), "quiet") || !strings.Contains(string(data), "\ttest-op\t") {
			t.Errorf("log file = %q, want debug line tagged with op id", data)
		}
		if strings.Contains(stderr.String(), "quiet") || !strings.Contains(stderr.String(), "loud") {
			t.Errorf("stderr = %q, want only the error", stderr.String())
		}
	})

	t.Run("verbose copies everything to stderr", func(t *testing.T) {
		var stderr bytes.Buffer
		logger, f, err := newLogger(t.TempDir(), "info", true, &stderr, "op")
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		defer f.Close()

		logger.Info("hello")
		if !strings.Contains(stderr.String(), "hello") {
			t.Errorf("stderr = %q, want info line", stderr.String())
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		if _, _, err := newLogger(t.TempDir(), "loud", false, &bytes.Buffer{}, "op"); err == nil {
			t.Error("newLogger() expected error for unknown level")
		}
	})
}
