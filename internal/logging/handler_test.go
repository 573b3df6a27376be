package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSwappableHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	sh := NewSwappableHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := context.Background()

	if sh.Enabled(ctx, slog.LevelDebug) {
		t.Error("Enabled(Debug) = true, want false at Info level")
	}
	if !sh.Enabled(ctx, slog.LevelError) {
		t.Error("Enabled(Error) = false, want true at Info level")
	}
}

func TestSwappableHandler_Swap(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	sh := NewSwappableHandler(slog.NewTextHandler(&buf1, nil))
	logger := slog.New(sh)

	logger.Info("message 1")
	sh.Swap(slog.NewTextHandler(&buf2, nil))
	logger.Info("message 2")

	if !strings.Contains(buf1.String(), "message 1") || strings.Contains(buf1.String(), "message 2") {
		t.Errorf("buf1 = %q, want only message 1", buf1.String())
	}
	if !strings.Contains(buf2.String(), "message 2") || strings.Contains(buf2.String(), "message 1") {
		t.Errorf("buf2 = %q, want only message 2", buf2.String())
	}
}

func TestSwappableHandler_DerivedHandlersFollowSwap(t *testing.T) {
	var before, after bytes.Buffer
	sh := NewSwappableHandler(slog.NewTextHandler(&before, nil))

	child := slog.New(sh).With("component", "export").WithGroup("job")
	child.Info("first", "id", "1.2")

	sh.Swap(slog.NewTextHandler(&after, nil))
	child.Info("second", "id", "3.4")

	if strings.Contains(before.String(), "second") {
		t.Errorf("child logged to the old sink after Swap: %q", before.String())
	}
	out := after.String()
	if !strings.Contains(out, "component=export") || !strings.Contains(out, "job.id=3.4") {
		t.Errorf("child record lost its attrs or group after Swap: %q", out)
	}
}

func TestSwappableHandler_WithAttrs_Independent(t *testing.T) {
	var buf bytes.Buffer
	sh := NewSwappableHandler(slog.NewTextHandler(&buf, nil))

	a := sh.WithAttrs([]slog.Attr{slog.String("k", "a")})
	b := sh.WithAttrs([]slog.Attr{slog.String("k", "b")})
	slog.New(a).Info("from a")
	slog.New(b).Info("from b")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "k=a") || strings.Contains(lines[0], "k=b") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "k=b") || strings.Contains(lines[1], "k=a") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestSwappableHandler_EmptyDerivations_ReturnSelf(t *testing.T) {
	sh := NewSwappableHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if sh.WithAttrs(nil) != slog.Handler(sh) {
		t.Error("WithAttrs(nil) should return the receiver")
	}
	if sh.WithGroup("") != slog.Handler(sh) {
		t.Error("WithGroup(\"\") should return the receiver")
	}
}
