// Package log provides the leveled logger used by the program runner and the
// vector harness.
package log

import (
	"fmt"
	"io"
	"os"
)

// Logger is a minimal leveled logger.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

type logger struct {
	w     io.Writer
	debug bool
}

// New returns a Logger writing to w. Debug output is dropped unless debug is set.
func New(w io.Writer, debug bool) Logger {
	if w == nil {
		w = os.Stdout
	}
	return &logger{w: w, debug: debug}
}

func (l *logger) Infof(format string, args ...any) {
	fmt.Fprintf(l.w, "[INFO]\t"+format+"\n", args...)
}

func (l *logger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.w, "[ERROR]\t"+format+"\n", args...)
}

func (l *logger) Debugf(format string, args ...any) {
	if !l.debug {
		return
	}
	fmt.Fprintf(l.w, "[DEBUG]\t"+format+"\n", args...)
}
