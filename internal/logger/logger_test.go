package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"
)

func bufferLogger(level LogLevel, json bool) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(&Config{
		Level:      level,
		Output:     &buf,
		JSON:       json,
		TimeFormat: "15:04:05",
	}), &buf
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  charmlog.Level
	}{
		{DebugLevel, charmlog.DebugLevel},
		{InfoLevel, charmlog.InfoLevel},
		{WarnLevel, charmlog.WarnLevel},
		{ErrorLevel, charmlog.ErrorLevel},
		{LogLevel("unknown"), charmlog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.ToCharmlogLevel(); got != tt.want {
				t.Errorf("ToCharmlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}

	if DisabledLevel.ToCharmlogLevel() <= charmlog.FatalLevel {
		t.Error("disabled level should sit above fatal")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{" WARN ", WarnLevel, false},
		{"", InfoLevel, false},
		{"disabled", DisabledLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, buf := bufferLogger(InfoLevel, false)
	l.Info("document processed", "file", "report.pdf")

	out := buf.String()
	if !strings.Contains(out, "document processed") || !strings.Contains(out, "report.pdf") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	l, buf := bufferLogger(InfoLevel, true)
	l.Info("document processed", "pages", 3)

	out := buf.String()
	if !strings.Contains(out, `"msg":"document processed"`) || !strings.Contains(out, `"pages":3`) {
		t.Errorf("unexpected JSON output %q", out)
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := bufferLogger(InfoLevel, false)
	l.With("component", "batch").Info("started")

	out := buf.String()
	if !strings.Contains(out, "component") || !strings.Contains(out, "batch") {
		t.Errorf("missing context fields in %q", out)
	}
}

func TestLoggerLevels(t *testing.T) {
	l, buf := bufferLogger(WarnLevel, false)
	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	for _, hidden := range []string{"debug message", "info message"} {
		if strings.Contains(out, hidden) {
			t.Errorf("%q should be filtered", hidden)
		}
	}
	for _, shown := range []string{"warn message", "error message"} {
		if !strings.Contains(out, shown) {
			t.Errorf("%q missing from output", shown)
		}
	}

	l, buf = bufferLogger(DisabledLevel, false)
	l.Error("error message")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	l, buf := bufferLogger(InfoLevel, false)
	ctx := ContextWithLogger(context.Background(), l)

	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Error("logger stored in the context was not used")
	}

	if FromContext(context.Background()) == nil {
		t.Error("expected the default logger")
	}
	wrong := context.WithValue(context.Background(), LoggerCtxKey, "not a logger")
	if FromContext(wrong) == nil {
		t.Error("expected the default logger for a wrong value type")
	}
}
