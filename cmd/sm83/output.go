package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/vectors"
)

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// Output writes command results, localizing numbers and colouring verdicts
// when attached to a terminal.
type Output struct {
	w      io.Writer
	p      *message.Printer
	colour bool
}

// NewOutput returns an Output for f using the user's locale.
func NewOutput(f *os.File) *Output {
	locales, err := locale.GetLocales()
	if err != nil || len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return &Output{
		w:      f,
		p:      message.NewPrinter(message.MatchLanguage(locales...)),
		colour: term.IsTerminal(int(f.Fd())), // #nosec G115 - file descriptors fit in int
	}
}

func newPlainOutput(w io.Writer) *Output {
	return &Output{w: w, p: message.NewPrinter(language.English)}
}

// Printf formats with the locale's number conventions.
func (o *Output) Printf(format string, args ...any) {
	o.p.Fprintf(o.w, format, args...)
}

// Registers prints a register dump.
func (o *Output) Registers(r *cpu.Registers) {
	fmt.Fprintf(o.w, "AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X\n",
		r.AF(), r.BC(), r.DE(), r.HL(), r.SP, r.PC)
	fmt.Fprintf(o.w, "Flags: Z=%d N=%d H=%d C=%d\n",
		bit(r.F.Zero), bit(r.F.Subtract), bit(r.F.HalfCarry), bit(r.F.Carry))
}

// Report prints one line per vector file.
func (o *Output) Report(file string, r *vectors.Report) {
	verdict := "PASS"
	colour := ansiGreen
	if !r.IsSuccess() {
		verdict = "FAIL"
		colour = ansiRed
	}
	if o.colour {
		verdict = colour + verdict + ansiReset
	}
	o.Printf("%s %s %s (%d/%d)\n", verdict, r.Op, file, r.Passed, r.Total)
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
