package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("decoded", "file", "a.cpt")

	output := buf.String()
	if !strings.Contains(output, `"msg":"decoded"`) {
		t.Fatalf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, `"file":"a.cpt"`) {
		t.Fatalf("expected file attr in JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"level":"INFO"`) {
		t.Fatalf("expected level INFO in output, got: %s", output)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")

	if buf.Len() > 0 {
		t.Fatalf("expected no output for info/debug at warn level, got: %s", buf.String())
	}
	if log.Enabled(slog.LevelInfo) || !log.Enabled(slog.LevelWarn) {
		t.Fatalf("Enabled does not follow the handler level")
	}

	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestOpenFormats(t *testing.T) {
	t.Parallel()

	cases := map[Format]string{
		FormatJSON:   `"anomaly":"sentinel_field_mismatch"`,
		FormatText:   `anomaly=sentinel_field_mismatch`,
		FormatPretty: `anomaly=sentinel_field_mismatch`,
		"":           `anomaly=sentinel_field_mismatch`,
	}
	for format, want := range cases {
		var buf bytes.Buffer
		log, err := Open(&buf, format, slog.LevelInfo)
		if err != nil {
			t.Fatalf("Open(%q): %v", format, err)
		}
		log.Warn("anomaly", "anomaly", "sentinel_field_mismatch")
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("Open(%q): expected %s, got: %s", format, want, buf.String())
		}
	}

	if _, err := Open(&bytes.Buffer{}, "xml", slog.LevelInfo); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	if log.Enabled(slog.LevelError) {
		t.Fatalf("discard logger should not enable any level")
	}
	log.Error("dropped")
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	childLog := log.With("component", "inspect")
	childLog.Info("child message")

	output := buf.String()
	if !strings.Contains(output, `"component":"inspect"`) {
		t.Fatalf("expected component attr in output, got: %s", output)
	}
}

func TestWithGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.WithGroup("block").Info("grouped message", "index", 3)

	output := buf.String()
	if !strings.Contains(output, `"block":{"index":3}`) {
		t.Fatalf("expected grouped attr in output, got: %s", output)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("roundtrip test")
	if !strings.Contains(buf.String(), "roundtrip test") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext with no logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{" Warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tc := range tests {
		got, err := ParseLevel(tc.input)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseLevel(%q): error %v, wantErr %v", tc.input, err, tc.wantErr)
		}
		if got != tc.expected {
			t.Fatalf("ParseLevel(%q): got %v want %v", tc.input, got, tc.expected)
		}
	}
}

func TestPrettyNoColorOnBuffer(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelDebug)
	log.Debug("debug msg", "offset", 44)

	output := buf.String()
	if strings.Contains(output, "\033[") {
		t.Fatalf("colors written to a non-terminal: %q", output)
	}
	if !strings.Contains(output, "DEBUG debug msg offset=44") {
		t.Fatalf("unexpected pretty line: %q", output)
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestPrettyHandlerAttrsAndGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	h2 := h.WithAttrs([]slog.Attr{slog.String("file", "a.cpt")}).WithGroup("a").WithGroup("b")
	slog.New(h2).Info("nested", "key", "val")

	output := buf.String()
	if !strings.Contains(output, "a.b.file=a.cpt") || !strings.Contains(output, "a.b.key=val") {
		t.Fatalf("expected grouped keys in output, got: %s", output)
	}
	if h.WithGroup("") != h {
		t.Fatal("WithGroup empty string should return same handler")
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil))
	logger.Info("test", "msg", "hello world", "key", "simple", "err", errors.New("bad magic"))

	output := buf.String()
	if !strings.Contains(output, `msg="hello world"`) {
		t.Fatalf("expected quoted string with spaces, got: %s", output)
	}
	if !strings.Contains(output, "key=simple") {
		t.Fatalf("expected unquoted simple string, got: %s", output)
	}
	if !strings.Contains(output, `err="bad magic"`) {
		t.Fatalf("expected quoted error value, got: %s", output)
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{"simple", false},
		{"has space", true},
		{"has\ttab", true},
		{`has"quote`, true},
		{"k=v", true},
		{"", false},
	}

	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.expected {
			t.Errorf("needsQuoting(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}
