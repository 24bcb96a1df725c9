package vectors

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/log"
	"github.com/richardwooding/sm83/internal/memory"
)

// Options controls a vector run.
type Options struct {
	// CheckFlags compares the packed flags as well as the result value.
	CheckFlags bool
	// MaxFailures caps the mismatches kept in the report (0 keeps all).
	MaxFailures int
	// Logger receives one Debug line per mismatch. Nil discards.
	Logger log.Logger
}

// Outcome is the observable result of one vector.
type Outcome struct {
	Value uint8
	Flags uint8
}

// MismatchError describes a vector whose outcome differed from the expected one.
type MismatchError struct {
	Index int
	Entry Entry
	Want  Outcome
	Got   Outcome
	Err   error
}

func (err *MismatchError) Error() string {
	prefix := fmt.Sprintf("vector %d (x=%s y=%s flags=%s)", err.Index, err.Entry.X, err.Entry.Y, err.Entry.Flags)
	if err.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, err.Err)
	}
	return fmt.Sprintf("%s: mismatch (-want +got):\n%s", prefix, cmp.Diff(err.Want, err.Got))
}

func (err *MismatchError) Unwrap() error {
	return err.Err
}

// Report represents the result of running one vector file.
type Report struct {
	Op       string
	Total    int
	Passed   int
	Failures []*MismatchError
}

// Failed returns the number of vectors that did not pass.
func (r *Report) Failed() int {
	return r.Total - r.Passed
}

// IsSuccess returns true if every vector passed.
func (r *Report) IsSuccess() bool {
	return r.Total > 0 && r.Passed == r.Total
}

// String returns a human-readable representation of the report.
func (r *Report) String() string {
	if r.IsSuccess() {
		return fmt.Sprintf("%s: PASSED (%d/%d)", r.Op, r.Passed, r.Total)
	}
	return fmt.Sprintf("%s: FAILED (%d/%d)", r.Op, r.Passed, r.Total)
}

// Run executes entries for the named operation.
func Run(name string, entries []Entry, opts Options) (*Report, error) {
	op, ok := Ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, name)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNullLogger()
	}

	c := cpu.New(memory.NewBus())
	report := &Report{Op: name, Total: len(entries)}

	for i, entry := range entries {
		c.Reset()

		mismatch := runEntry(c, op, entry, opts.CheckFlags)
		if mismatch == nil {
			report.Passed++
			continue
		}

		mismatch.Index = i
		logger.Debugf("%s: %v", name, mismatch)
		if opts.MaxFailures == 0 || len(report.Failures) < opts.MaxFailures {
			report.Failures = append(report.Failures, mismatch)
		}
	}

	logger.Infof("%v", report)
	return report, nil
}

// RunFile loads a vector file and runs it under the operation named by the file.
func RunFile(path string, opts Options) (*Report, error) {
	name := OpName(path)
	if _, ok := Ops[name]; !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnknownOp, name, path)
	}

	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Run(name, entries, opts)
}

// runEntry executes one vector on a reset CPU and returns nil when it passes.
func runEntry(c *cpu.CPU, op Op, entry Entry, checkFlags bool) *MismatchError {
	mismatch := &MismatchError{Entry: entry}

	x, err := parseByte(entry.X)
	if err != nil {
		mismatch.Err = err
		return mismatch
	}
	var y uint8
	if entry.Y != "" {
		if y, err = parseByte(entry.Y); err != nil {
			mismatch.Err = err
			return mismatch
		}
	}
	flags, err := parseByte(entry.Flags)
	if err != nil {
		mismatch.Err = err
		return mismatch
	}
	if mismatch.Want.Value, err = parseByte(entry.Result.Value); err != nil {
		mismatch.Err = err
		return mismatch
	}
	if mismatch.Want.Flags, err = parseByte(entry.Result.Flags); err != nil {
		mismatch.Err = err
		return mismatch
	}

	regs := c.Registers
	regs.F = cpu.UnpackFlags(flags)
	regs.Set(op.Target, x)
	if op.LoadY {
		regs.B = y
	}

	if err := c.Execute(op.Build(y)); err != nil {
		mismatch.Err = err
		return mismatch
	}

	mismatch.Got = Outcome{Value: regs.Get(op.Target), Flags: regs.F.Pack()}
	mismatch.Want.Flags &= 0xF0
	if !checkFlags {
		mismatch.Want.Flags = mismatch.Got.Flags
	}

	if mismatch.Got == mismatch.Want {
		return nil
	}
	return mismatch
}
