package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opendav/da-verifier/internal/verrors"
)

func TestResultLogsOkLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Result("rec-1", nil)
	if !strings.Contains(buf.String(), "rec-1 - OK") {
		t.Fatalf("expected OK line, got %q", buf.String())
	}
}

func TestResultLogsFailedLineWithKind(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Result("rec-2", verrors.New(verrors.KindEventMismatch, nil))
	if !strings.Contains(buf.String(), "rec-2 - FAILED - EventMismatch") {
		t.Fatalf("expected FAILED line with kind, got %q", buf.String())
	}
}

func TestResultFallsBackToPlainErrorText(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Result("rec-3", errPlain("boom"))
	if !strings.Contains(buf.String(), "rec-3 - FAILED - boom") {
		t.Fatalf("expected FAILED line with plain error text, got %q", buf.String())
	}
}

func TestInfoWritesFormattedLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Info("starting up: %s", "da-verifier")
	if !strings.Contains(buf.String(), "starting up: da-verifier") {
		t.Fatalf("expected formatted info line, got %q", buf.String())
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
