// Package runnertest provides a scripted in-memory Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alexisbeaulieu97/converge/internal/runner"
)

// Step is one expected invocation and its canned outcome.
type Step struct {
	// Argv must match the invocation exactly.
	Argv   []string
	Result runner.Result
	Err    error
}

// Script replays steps in order and fails the invocation on any deviation.
type Script struct {
	mu    sync.Mutex
	steps []Step
	calls [][]string
}

// New returns a Script expecting exactly steps, in order.
func New(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Expect appends a step.
func (s *Script) Expect(argv []string, res runner.Result) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, Step{Argv: argv, Result: res})
	return s
}

// Run implements runner.Runner.
func (s *Script) Run(_ context.Context, argv []string) (runner.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.calls)
	s.calls = append(s.calls, append([]string(nil), argv...))

	if idx >= len(s.steps) {
		return runner.Result{ExitCode: 1}, fmt.Errorf("runnertest: unexpected call %d: %s", idx, strings.Join(argv, " "))
	}
	step := s.steps[idx]
	if strings.Join(step.Argv, "\x00") != strings.Join(argv, "\x00") {
		return runner.Result{ExitCode: 1}, fmt.Errorf("runnertest: call %d: want %q, got %q", idx, step.Argv, argv)
	}
	return step.Result, step.Err
}

// Calls returns every argv received so far.
func (s *Script) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// Remaining reports how many scripted steps were never consumed.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.steps) - len(s.calls); n > 0 {
		return n
	}
	return 0
}

// Out is shorthand for a zero-exit result with the given stdout.
func Out(stdout string) runner.Result {
	return runner.Result{Stdout: stdout}
}

// Exit is shorthand for a result with the given exit code and stderr.
func Exit(code int, stderr string) runner.Result {
	return runner.Result{ExitCode: code, Stderr: stderr}
}
