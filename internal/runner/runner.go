package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/alexisbeaulieu97/converge/internal/logger"
)

// ExitNotFound is reported when the executable could not be started at all.
const ExitNotFound = 127

// localeEnv pins the child's locale so the output markers stay in English.
var localeEnv = []string{"LANG=C", "LC_ALL=C", "LC_MESSAGES=C", "LC_CTYPE=C"}

// Result captures one finished child process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Diagnostic returns trimmed stderr if present, otherwise trimmed stdout.
func (r Result) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Success reports whether the process exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner runs one command to completion. A non-zero exit is not an error:
// the error return is reserved for a process that could not run or was cancelled.
type Runner interface {
	Run(ctx context.Context, argv []string) (Result, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct {
	// Tee, when set, receives a copy of both output streams as they arrive.
	Tee io.Writer
	Log *logger.Logger
}

// Run executes argv[0] with the remaining arguments and a C locale.
func (r ExecRunner) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: ExitNotFound}, errors.New("runner: empty argv")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), localeEnv...)

	var stdout, stderr bytes.Buffer
	if r.Tee != nil {
		cmd.Stdout = io.MultiWriter(r.Tee, &stdout)
		cmd.Stderr = io.MultiWriter(r.Tee, &stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		res.ExitCode = -1
		r.Log.Command(argv, res.ExitCode)
		return res, ctx.Err()
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		err = nil
	default:
		res.ExitCode = ExitNotFound
		r.Log.Command(argv, res.ExitCode)
		return res, err
	}

	r.Log.Command(argv, res.ExitCode)
	return res, err
}
