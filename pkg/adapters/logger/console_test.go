package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/hwenc/pkg/ports"
)

func TestConsoleLogger_LevelFilter(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleTo(ports.LevelInfo, &out, &errOut, false)

	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)
	log.Warn("warned %d", 3)

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("debug line should be filtered: %q", out.String())
	}
	if !strings.Contains(out.String(), "shown 2") {
		t.Errorf("expected info line on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "warned 3") {
		t.Errorf("expected warn line on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleTo(ports.LevelDebug, &out, &errOut, false).WithComponent("encoder")

	log.Info("unit %d ready", 7)

	if got := out.String(); got != "[encoder] unit 7 ready\n" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleTo(ports.LevelQuiet, &out, &errOut, false)

	log.Error("boom")

	if out.Len() != 0 || errOut.Len() != 0 {
		t.Errorf("quiet logger wrote output: %q %q", out.String(), errOut.String())
	}
}
