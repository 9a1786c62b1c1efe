// Package localexec runs external toolchain processes and captures their
// combined output.
//
// A non-zero exit status is reported as data in the Result, not as a Go
// error; errors are reserved for failures to spawn or wire up the process.
// Exit status is the single source of truth for success, output content is
// never inspected.
package localexec

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Output recorded when the caller did not ask for capture. The call still
// blocks until the process terminates.
const uncapturedMarker = "completed"

// Cmd describes one external process invocation.
type Cmd struct {
	Argv []string // command and arguments, Argv[0] is the executable
	Dir  string   // working directory, empty means inherit
	Env  []string // extra KEY=VALUE entries appended to the environment
}

func (c Cmd) String() string {
	return strings.Join(c.Argv, " ")
}

// Result is the outcome of one completed process.
type Result struct {
	ExitCode int
	Output   string // combined stdout+stderr, trailing newline trimmed
}

func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes external commands. The production implementation is
// ProcessRunner; tests substitute FakeRunner.
type Runner interface {
	// Run executes cmd and blocks until it terminates. When capture is true
	// the combined output is read incrementally as the process produces it
	// and returned in the Result; when false output goes to the runner's
	// writer and the Result carries only a completion marker.
	Run(ctx context.Context, cmd Cmd, capture bool) (Result, error)
}

// ProcessRunner runs commands as local OS processes.
type ProcessRunner struct {
	// Stdout receives process output when capture is off. Defaults to
	// os.Stdout.
	Stdout io.Writer
}

var _ Runner = (*ProcessRunner)(nil)

func (p *ProcessRunner) Run(ctx context.Context, cmd Cmd, capture bool) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	if !capture {
		out := p.Stdout
		if out == nil {
			out = os.Stdout
		}
		c.Stdout = out
		c.Stderr = out
		code, err := waitExit(c.Run())
		if err != nil {
			return Result{}, err
		}
		return Result{ExitCode: code, Output: uncapturedMarker}, nil
	}

	// Compilers can produce large volumes of output; reading it only after
	// termination would stall the process on a full pipe. A reader goroutine
	// consumes raw chunks as they arrive — no per-line cap, toolchains echo
	// arbitrarily long command lines — and hands the finished transcript
	// back over a channel. The pipe is closed after Wait, so the reader
	// drains everything still buffered before finishing.
	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw

	outc := make(chan string, 1)
	go func() {
		var b strings.Builder
		buf := make([]byte, 32*1024)
		for {
			n, err := pr.Read(buf)
			b.Write(buf[:n])
			if err != nil {
				break
			}
		}
		outc <- strings.TrimRight(b.String(), "\n")
	}()

	if err := c.Start(); err != nil {
		pw.Close()
		<-outc
		return Result{}, err
	}
	code, err := waitExit(c.Wait())
	pw.Close()
	output := <-outc
	if err != nil {
		return Result{}, err
	}
	return Result{ExitCode: code, Output: output}, nil
}

// waitExit converts the error from (*exec.Cmd).Run or Wait into an exit
// code. A non-zero exit is not an error here; the caller decides.
func waitExit(err error) (int, error) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil
}
