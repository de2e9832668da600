package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestModuleTagsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	child := l.Module("sync")
	child.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "module=sync") {
		t.Fatalf("expected module=sync in log output, got %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected message in log output, got %q", out)
	}
}

func TestWithAddsContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewTextHandler(&buf, nil))
	l.With("height", 42).Warn("rejected")

	out := buf.String()
	if !strings.Contains(out, "height=42") {
		t.Fatalf("expected height=42 in log output, got %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	l.Debug("should not appear")
	l.Info("should not appear either")
	l.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("debug/info should be filtered out at warn level, got %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn message should be present, got %q", out)
	}
}

func TestSetDefaultAndWarnf(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewWithHandler(slog.NewTextHandler(&buf, nil)))
	Warnf("panic: %s", "boom")

	if !strings.Contains(buf.String(), "panic: boom") {
		t.Fatalf("expected formatted message in output, got %q", buf.String())
	}

	// Restore a default logger so later tests in the same binary aren't
	// left writing into this test's buffer.
	SetDefault(New(slog.LevelInfo))
}

type fakePhase string

func (f fakePhase) String() string { return string(f) }

func TestPhaseLogsNameAndExtraArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewTextHandler(&buf, nil))
	l.Phase(fakePhase("PROVE_BLOCKS"), "height", 12)

	out := buf.String()
	if !strings.Contains(out, "phase=PROVE_BLOCKS") {
		t.Fatalf("expected phase=PROVE_BLOCKS in log output, got %q", out)
	}
	if !strings.Contains(out, "height=12") {
		t.Fatalf("expected height=12 in log output, got %q", out)
	}
}
