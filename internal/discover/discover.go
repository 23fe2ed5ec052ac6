package discover

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/converge/internal/dialect"
	"github.com/alexisbeaulieu97/converge/internal/logger"
	"github.com/alexisbeaulieu97/converge/internal/runner"
)

// Discoverer answers read-only questions about the managed system. Each
// question costs exactly one child process.
type Discoverer struct {
	exe     string
	dialect dialect.Dialect
	runner  runner.Runner
	log     *logger.Logger
}

// New returns a Discoverer that runs exe, the located executable for d.
func New(exe string, d dialect.Dialect, r runner.Runner, log *logger.Logger) *Discoverer {
	return &Discoverer{exe: exe, dialect: d, runner: r, log: log}
}

// EnvironmentExists reports whether the tool lists an environment named env.
func (d *Discoverer) EnvironmentExists(ctx context.Context, env string) (bool, error) {
	res, err := d.query(ctx, dialect.QueryEnvList, dialect.Target{Environment: env})
	if err != nil {
		return false, err
	}
	return d.dialect.EnvironmentExists(res.Stdout, env), nil
}

// Installed reports whether t.Package is installed. When t.Version is set the
// installed version must match.
func (d *Discoverer) Installed(ctx context.Context, t dialect.Target) (bool, error) {
	res, err := d.query(ctx, dialect.QueryInfo, t)
	if err != nil {
		return false, err
	}
	return d.dialect.Installed(res.Stdout, t.Package, t.Version), nil
}

// Outdated reports whether a newer version of t.Package is available. A
// non-zero exit of the outdated query means outdated; a zero exit defers to
// the dialect's reading of the planned update.
func (d *Discoverer) Outdated(ctx context.Context, t dialect.Target) (bool, error) {
	res, err := d.query(ctx, dialect.QueryOutdated, t)
	if err != nil {
		return false, err
	}
	if !res.Success() {
		return true, nil
	}
	return d.dialect.UpdatePlanned(res.Stdout), nil
}

// SelfReport runs the tool's self-description query.
func (d *Discoverer) SelfReport(ctx context.Context) (runner.Result, error) {
	return d.query(ctx, dialect.QuerySelf, dialect.Target{})
}

func (d *Discoverer) query(ctx context.Context, q dialect.Query, t dialect.Target) (runner.Result, error) {
	args, err := d.dialect.QueryArgs(q, t)
	if err != nil {
		return runner.Result{}, err
	}
	res, err := d.runner.Run(ctx, dialect.Argv(d.exe, args))
	if err != nil {
		return res, fmt.Errorf("%s %s: %w", d.dialect.Executable(), q, err)
	}
	d.log.With("query", string(q)).Debug(fmt.Sprintf("%s query exited %d", d.dialect.Executable(), res.ExitCode))
	return res, nil
}
