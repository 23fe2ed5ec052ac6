package versiongate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/converge/internal/dialect"
	"github.com/alexisbeaulieu97/converge/internal/runner"
	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

// Verdict is the outcome of inspecting the tool's self-report.
type Verdict struct {
	Version string
	// UpdateOnly means the tool is older than the minimum and may only update itself.
	UpdateOnly bool
}

// Reporter runs the tool's self-description query.
type Reporter interface {
	SelfReport(ctx context.Context) (runner.Result, error)
}

// Check asks the tool for its self-report and evaluates it against the
// dialect's minimum. Dialects without a minimum are never gated.
func Check(ctx context.Context, r Reporter, d dialect.Dialect) (Verdict, error) {
	if d.MinimumVersion() == "" {
		return Verdict{}, nil
	}
	res, err := r.SelfReport(ctx)
	if err != nil {
		return Verdict{}, err
	}
	return Evaluate(d, res.Stdout)
}

// Evaluate parses a self-report and compares its version with the minimum.
func Evaluate(d dialect.Dialect, stdout string) (Verdict, error) {
	tool := d.Executable()
	name, version, ok := d.SelfReport(stdout)
	if !ok {
		return Verdict{}, convergeerrors.NewUnexpectedOutputError(tool, stdout, "self-report is too short")
	}
	if name != tool {
		return Verdict{}, convergeerrors.NewUnexpectedOutputError(tool, stdout, fmt.Sprintf("expected %q, got %q", tool, name))
	}

	below, err := Below(version, d.MinimumVersion())
	if err != nil {
		return Verdict{}, convergeerrors.NewUnexpectedOutputError(tool, stdout, err.Error())
	}
	return Verdict{Version: version, UpdateOnly: below}, nil
}

// Below reports whether version is older than minimum. Components are compared
// left to right and the first difference decides. A version with fewer
// components than minimum is not below it once its components are exhausted.
func Below(version, minimum string) (bool, error) {
	have := strings.Split(version, ".")
	want := strings.Split(minimum, ".")

	for i, w := range want {
		if i >= len(have) {
			return false, nil
		}
		h, err := strconv.Atoi(have[i])
		if err != nil {
			return false, fmt.Errorf("version %q: component %q is not numeric", version, have[i])
		}
		m, err := strconv.Atoi(w)
		if err != nil {
			return false, fmt.Errorf("minimum %q: component %q is not numeric", minimum, w)
		}
		if h != m {
			return h < m, nil
		}
	}
	return false, nil
}
