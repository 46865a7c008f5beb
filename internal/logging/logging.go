// Package logging prints the verifier's per-record result lines in the
// colors spec §7 calls for: green "<id> - OK", red
// "<id> - FAILED - <ErrorKind>", and a red line for fatal exits.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"

	"github.com/opendav/da-verifier/internal/verrors"
)

// Logger prints record outcomes and fatal errors to an output stream,
// following the teacher's log.New(writer, prefix, flags) construction
// idiom (see main.go's per-component *log.Logger fields).
type Logger struct {
	out   *log.Logger
	ok    *color.Color
	fail  *color.Color
	fatal *color.Color
}

// New builds a Logger writing to os.Stdout, using go-colorable to keep
// ANSI escapes working under Windows consoles the way the bare
// os.Stdout writer would not.
func New() *Logger {
	return NewWithWriter(colorable.NewColorableStdout())
}

// NewWithWriter builds a Logger against an arbitrary writer, primarily
// for tests that want to capture output.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		out:   log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		ok:    color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		fatal: color.New(color.FgRed, color.Bold),
	}
}

// Result logs one record's outcome.
func (l *Logger) Result(id string, err error) {
	if err == nil {
		l.out.Println(l.ok.Sprintf("%s - OK", id))
		return
	}
	kind, ok := verrors.KindOf(err)
	if !ok {
		kind = verrors.Kind(err.Error())
	}
	l.out.Println(l.fail.Sprintf("%s - FAILED - %s", id, kind))
}

// Fatal logs a fatal, batch/process-terminating error and exits the
// process with status 1.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.out.Println(l.fatal.Sprint(fmt.Sprintf(format, args...)))
	os.Exit(1)
}

// Info logs a plain informational line.
func (l *Logger) Info(format string, args ...interface{}) {
	l.out.Printf(format, args...)
}
