package localexec

import (
	"context"
	"sync"
)

// FakeRunner is a Runner for tests. Results are registered per command line
// or per executable name; unregistered commands succeed with empty output.
// Every call is recorded.
type FakeRunner struct {
	mu      sync.Mutex
	results map[string]Result
	errs    map[string]error
	hooks   map[string]func(Cmd)
	calls   []Cmd
}

var _ Runner = (*FakeRunner)(nil)

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		results: make(map[string]Result),
		errs:    make(map[string]error),
		hooks:   make(map[string]func(Cmd)),
	}
}

// Stub registers a result for a command. key is either the full command line
// (cmd.String()) or just the executable name; the full line takes precedence.
func (f *FakeRunner) Stub(key string, exitCode int, output string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[key] = Result{ExitCode: exitCode, Output: output}
}

// StubError registers a spawn failure for a command.
func (f *FakeRunner) StubError(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[key] = err
}

// OnRun registers a hook invoked before a matching command's result is
// returned, so tests can materialize the files a real invocation would have
// produced.
func (f *FakeRunner) OnRun(key string, hook func(Cmd)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[key] = hook
}

// Calls returns every command run so far, in order.
func (f *FakeRunner) Calls() []Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Cmd(nil), f.calls...)
}

func (f *FakeRunner) Run(ctx context.Context, cmd Cmd, capture bool) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	hook := f.lookupHook(cmd)
	err, hasErr := f.lookupErr(cmd)
	res, hasRes := f.lookupResult(cmd)
	f.mu.Unlock()

	if hook != nil {
		hook(cmd)
	}
	if hasErr {
		return Result{}, err
	}
	if hasRes {
		return res, nil
	}
	return Result{}, nil
}

func (f *FakeRunner) lookupResult(cmd Cmd) (Result, bool) {
	if r, ok := f.results[cmd.String()]; ok {
		return r, true
	}
	r, ok := f.results[cmd.Argv[0]]
	return r, ok
}

func (f *FakeRunner) lookupErr(cmd Cmd) (error, bool) {
	if err, ok := f.errs[cmd.String()]; ok {
		return err, true
	}
	err, ok := f.errs[cmd.Argv[0]]
	return err, ok
}

func (f *FakeRunner) lookupHook(cmd Cmd) func(Cmd) {
	if h, ok := f.hooks[cmd.String()]; ok {
		return h
	}
	return f.hooks[cmd.Argv[0]]
}
