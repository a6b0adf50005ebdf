package observability

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "prod", "warn")

	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("expected JSON warn line, got %s", out)
	}
}

func TestNewLogger_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "prod", "loud")
	l.Info().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected info output, got %q", buf.String())
	}
}
