// Package main provides the sm83 CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/richardwooding/sm83/internal/asm"
	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/log"
	"github.com/richardwooding/sm83/internal/machine"
	"github.com/richardwooding/sm83/internal/memory"
	"github.com/richardwooding/sm83/internal/vectors"
)

var (
	// ErrTestFailed indicates at least one vector failed.
	ErrTestFailed = errors.New("test failed")

	// ErrNoSource indicates the asm command was given nothing to assemble.
	ErrNoSource = errors.New("no source file given")

	// ErrInvalidRegion indicates a --protect value that is not START-END.
	ErrInvalidRegion = errors.New("region must be START-END in hex")

	// ErrInvalidImage indicates a --load value that is not ADDR=FILE.
	ErrInvalidImage = errors.New("image must be ADDR=FILE with ADDR in hex")
)

const defaultTimeout = 10 * time.Second

// CLI represents the command-line interface structure.
type CLI struct {
	Exec    ExecCmd    `cmd:"" help:"Assemble and run a program."`
	Asm     AsmCmd     `cmd:"" help:"Assemble a program and print the canonical listing."`
	Vectors VectorsCmd `cmd:"" help:"Run ALU test vectors and report results."`
}

// ExecCmd runs an assembly program on a fresh machine.
type ExecCmd struct {
	File    string        `arg:"" type:"existingfile" help:"Path to assembly source."`
	Timeout time.Duration `default:"10s" help:"Abort the program after this long."`
	Protect []string      `help:"Read-only memory region as START-END in hex (repeatable)."`
	Load    []string      `help:"Preload memory from a file as ADDR=FILE with ADDR in hex (repeatable)."`
	Verbose bool          `short:"v" help:"Trace every instruction."`
}

// Run executes the exec command.
func (c *ExecCmd) Run(out *Output) error {
	prog, err := assembleFile(c.File)
	if err != nil {
		return err
	}

	regions, err := parseRegions(c.Protect)
	if err != nil {
		return err
	}

	opts := []machine.Option{
		machine.WithLogger(log.New(out.w, c.Verbose)),
		machine.WithProtected(regions...),
	}
	for _, arg := range c.Load {
		addr, data, err := readImage(arg)
		if err != nil {
			return err
		}
		opts = append(opts, machine.WithImage(addr, data))
	}

	m, err := machine.New(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	runErr := m.Run(ctx, prog)

	out.Registers(m.CPU.Registers)
	for _, r := range m.Memory.Protected() {
		out.Printf("Protected %v\n", r)
	}
	switch {
	case runErr != nil:
		out.Printf("Stopped after %d instructions\n", m.Executed)
		return fmt.Errorf("execution failed: %w", runErr)
	case m.Halted():
		out.Printf("Halted after %d instructions\n", m.Executed)
	default:
		out.Printf("Completed %d instructions\n", m.Executed)
	}

	return nil
}

// AsmCmd assembles a program and prints it back in canonical form.
type AsmCmd struct {
	File      string `arg:"" optional:"" type:"existingfile" help:"Path to assembly source."`
	Mnemonics bool   `help:"List the supported mnemonics instead."`
}

// Run executes the asm command.
func (c *AsmCmd) Run(out *Output) error {
	if c.Mnemonics {
		out.Printf("%s\n", strings.Join(asm.Mnemonics(), " "))
		return nil
	}
	if c.File == "" {
		return ErrNoSource
	}

	prog, err := assembleFile(c.File)
	if err != nil {
		return err
	}

	fmt.Fprint(out.w, asm.Format(prog))
	return nil
}

// VectorsCmd runs vector files through the CPU.
type VectorsCmd struct {
	Paths       []string `arg:"" type:"existingpath" help:"Vector files or directories of them."`
	Flags       bool     `help:"Compare flags as well as result values."`
	Op          string   `help:"Run every file as this operation instead of deriving it from the file name."`
	MaxFailures int      `default:"5" help:"Mismatches to show per file (0 shows all)."`
	Verbose     bool     `short:"v" help:"Log every mismatch."`
}

// Run executes the vectors command.
func (c *VectorsCmd) Run(out *Output) error {
	if c.Op != "" {
		if _, ok := vectors.Ops[c.Op]; !ok {
			return fmt.Errorf("%w: %q (have %s)", vectors.ErrUnknownOp, c.Op, strings.Join(vectors.OpNames(), ", "))
		}
	}

	var files []string
	for _, path := range c.Paths {
		found, err := vectors.Discover(path)
		if err != nil {
			return fmt.Errorf("failed to read vectors: %w", err)
		}
		files = append(files, found...)
	}

	opts := vectors.Options{
		CheckFlags:  c.Flags,
		MaxFailures: c.MaxFailures,
		Logger:      log.NewNullLogger(),
	}
	if c.Verbose {
		opts.Logger = log.New(out.w, true)
	}

	var total, passed, failedFiles int
	for _, file := range files {
		if c.Op == "" {
			if _, ok := vectors.Ops[vectors.OpName(file)]; !ok {
				out.Printf("%s: skipped\n", file)
				continue
			}
		}

		report, err := c.runFile(file, opts)
		if err != nil {
			return err
		}

		out.Report(file, report)
		for _, mismatch := range report.Failures {
			out.Printf("  %s\n", mismatch.Error())
		}

		total += report.Total
		passed += report.Passed
		if !report.IsSuccess() {
			failedFiles++
		}
	}

	out.Printf("%d of %d vectors passed\n", passed, total)

	if failedFiles > 0 || total == 0 {
		return ErrTestFailed
	}
	return nil
}

// runFile runs one vector file, under --op when it is set.
func (c *VectorsCmd) runFile(file string, opts vectors.Options) (*vectors.Report, error) {
	if c.Op == "" {
		return vectors.RunFile(file, opts)
	}

	entries, err := vectors.Load(file)
	if err != nil {
		return nil, err
	}
	return vectors.Run(c.Op, entries, opts)
}

func assembleFile(path string) ([]cpu.Instruction, error) {
	// #nosec G304 - path is provided by the user via CLI argument
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	defer file.Close()

	prog, err := asm.Assemble(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// parseRegions parses START-END hex pairs such as "C000-CFFF".
func parseRegions(args []string) ([]memory.Region, error) {
	regions := make([]memory.Region, 0, len(args))
	for _, arg := range args {
		lo, hi, ok := strings.Cut(arg, "-")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRegion, arg)
		}
		start, err := strconv.ParseUint(strings.TrimPrefix(lo, "0x"), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRegion, arg)
		}
		end, err := strconv.ParseUint(strings.TrimPrefix(hi, "0x"), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRegion, arg)
		}
		regions = append(regions, memory.Region{Start: uint16(start), End: uint16(end)})
	}
	return regions, nil
}

// readImage parses ADDR=FILE and reads the file.
func readImage(arg string) (uint16, []byte, error) {
	lo, path, ok := strings.Cut(arg, "=")
	if !ok || path == "" {
		return 0, nil, fmt.Errorf("%w: %q", ErrInvalidImage, arg)
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(lo, "0x"), 16, 16)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %q", ErrInvalidImage, arg)
	}

	// #nosec G304 - path is provided by the user via CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read image: %w", err)
	}
	return uint16(addr), data, nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("sm83"),
		kong.Description("An SM83 instruction interpreter with an assembler and ALU vector harness."),
		kong.UsageOnError(),
		kong.Bind(NewOutput(os.Stdout)),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
