package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/converge/internal/dialect"
	"github.com/alexisbeaulieu97/converge/internal/discover"
	"github.com/alexisbeaulieu97/converge/internal/locator"
	"github.com/alexisbeaulieu97/converge/internal/logger"
	"github.com/alexisbeaulieu97/converge/internal/request"
	"github.com/alexisbeaulieu97/converge/internal/runner"
	"github.com/alexisbeaulieu97/converge/internal/versiongate"
	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

// LocateFunc resolves an executable name against search directories.
type LocateFunc func(name string, dirs []string) (string, error)

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithLocator replaces executable lookup.
func WithLocator(fn LocateFunc) Option {
	return func(e *Engine) { e.locate = fn }
}

// Engine converges one request per Run call against a single external tool.
type Engine struct {
	runner runner.Runner
	locate LocateFunc
	log    *logger.Logger
}

// New constructs an Engine that spawns child processes through r.
func New(r runner.Runner, opts ...Option) *Engine {
	e := &Engine{runner: r, locate: locator.Locate, log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// outcome tells the caller whether to continue with the next step.
type outcome int

const (
	proceed outcome = iota
	// halt ends the run after a dry-run would-be mutation.
	halt
)

// run is the state of one reconciliation pass.
type run struct {
	req        *request.Request
	dialect    dialect.Dialect
	exe        string
	runner     runner.Runner
	disc       *discover.Discoverer
	log        *logger.Logger
	agg        *aggregator
	envChecked bool
}

// Run validates req, locates the tool and converges every target in order.
// The first fatal error ends the run; later targets are not examined.
func (e *Engine) Run(ctx context.Context, req *request.Request) Result {
	agg := newAggregator()

	if err := req.Validate(); err != nil {
		agg.fail("request", err)
		return agg.finalize()
	}
	req = req.Clone()

	d, err := dialect.For(req.Tool)
	if err != nil {
		agg.fail(string(req.Tool), err)
		return agg.finalize()
	}

	log := e.log.With("tool", string(req.Tool))

	dirs := append(append([]string(nil), req.SearchPath...), d.DefaultSearchPath()...)
	exe, err := e.locate(d.Executable(), dirs)
	if err != nil {
		log.Error(err, "executable lookup failed")
		agg.fail(d.Executable(), err)
		return agg.finalize()
	}
	log = log.With("executable", exe)
	log.Debug("executable located")

	r := &run{
		req:     req,
		dialect: d,
		exe:     exe,
		runner:  e.runner,
		disc:    discover.New(exe, d, e.runner, log),
		log:     log,
		agg:     agg,
	}

	if err := r.execute(ctx); err != nil {
		log.Error(err, "reconciliation failed")
	}

	res := agg.finalize()
	log.WithFields(map[string]any{
		"changed":         res.Changed,
		"failed":          res.Failed,
		"changed_count":   res.ChangedCount,
		"unchanged_count": res.UnchangedCount,
	}).Info("reconciliation finished")
	return res
}

func (r *run) execute(ctx context.Context) error {
	verdict, err := versiongate.Check(ctx, r.disc, r.dialect)
	if err != nil {
		r.agg.fail(r.dialect.Executable(), err)
		return err
	}

	if verdict.UpdateOnly {
		if r.req.UpdateSelf {
			r.log.Warn(fmt.Sprintf("%s %s is older than %s; only updating the tool itself", r.dialect.Executable(), verdict.Version, r.dialect.MinimumVersion()))
			_, err := r.updateSelf(ctx)
			return err
		}
		if r.req.HasPackageWork() {
			err := convergeerrors.NewVersionTooOldError(r.dialect.Executable(), verdict.Version, r.dialect.MinimumVersion())
			r.agg.fail(r.dialect.Executable(), err)
			return err
		}
		return nil
	}

	steps := []func(context.Context) (outcome, error){}
	if r.req.UpdateSelf {
		steps = append(steps, r.updateSelf)
	}
	if r.req.WantsUpgradeAll() {
		steps = append(steps, r.upgradeAll)
	}
	if r.req.State == request.StateRemoveEnv {
		steps = append(steps, r.removeEnvironment)
	} else {
		for _, pkg := range r.req.Packages {
			steps = append(steps, r.packageStep(pkg))
		}
	}

	for _, step := range steps {
		out, err := step(ctx)
		if err != nil || out == halt {
			return err
		}
	}
	return nil
}

func (r *run) packageStep(pkg string) func(context.Context) (outcome, error) {
	return func(ctx context.Context) (outcome, error) {
		var (
			out outcome
			err error
		)
		switch r.req.State {
		case request.StateInstalled:
			out, err = r.install(ctx, pkg)
		case request.StateHead:
			out, err = r.installHead(ctx, pkg)
		case request.StateUpgraded:
			out, err = r.upgrade(ctx, pkg)
		case request.StateAbsent:
			out, err = r.uninstall(ctx, pkg)
		case request.StateLinked:
			out, err = r.link(ctx, pkg, dialect.OpLink, "linked")
		case request.StateUnlinked:
			out, err = r.link(ctx, pkg, dialect.OpUnlink, "unlinked")
		default:
			err = convergeerrors.NewValidationError("state", string(r.req.State), "no package action", nil)
		}
		if err != nil {
			r.agg.fail(pkg, err)
		}
		return out, err
	}
}

func (r *run) install(ctx context.Context, pkg string) (outcome, error) {
	t := dialect.TargetFor(r.req, pkg)

	installed, err := r.disc.Installed(ctx, t)
	if err != nil {
		return halt, err
	}
	if installed {
		r.unchanged(pkg, "Package already installed: %s", pkg)
		return proceed, nil
	}

	if out, err := r.ensureEnvironment(ctx); err != nil || out == halt {
		return halt, err
	}
	if r.req.DryRun {
		r.wouldChange(pkg, "Package would be installed: %s", pkg)
		return halt, nil
	}

	res, err := r.mutate(ctx, dialect.OpInstall, t)
	if err != nil {
		return halt, err
	}
	satisfied := r.dialect.AlreadySatisfied(dialect.OpInstall, res.Stdout)

	if installed, err = r.disc.Installed(ctx, t); err != nil {
		return halt, err
	}
	if !installed {
		if satisfied && t.Version != "" {
			return halt, convergeerrors.NewPreconditionError(pkg, fmt.Sprintf("Installed version of %s does not match %s.", pkg, t.Version))
		}
		return halt, r.notConverged(dialect.OpInstall, t, res)
	}
	if satisfied {
		r.unchanged(pkg, "Package already installed: %s", pkg)
		return proceed, nil
	}
	r.changed(pkg, "Package installed: %s", pkg)
	return proceed, nil
}

func (r *run) installHead(ctx context.Context, pkg string) (outcome, error) {
	t := dialect.TargetFor(r.req, pkg)

	if r.req.DryRun {
		r.wouldChange(pkg, "Package would be installed: %s", pkg)
		return halt, nil
	}

	res, err := r.mutate(ctx, dialect.OpInstallHead, t)
	if err != nil {
		return halt, err
	}

	t.Version = ""
	installed, err := r.disc.Installed(ctx, t)
	if err != nil {
		return halt, err
	}
	if !installed {
		return halt, r.notConverged(dialect.OpInstallHead, t, res)
	}
	if r.dialect.AlreadySatisfied(dialect.OpInstallHead, res.Stdout) {
		r.unchanged(pkg, "Package already installed: %s", pkg)
		return proceed, nil
	}
	r.changed(pkg, "Package installed: %s", pkg)
	return proceed, nil
}

func (r *run) upgrade(ctx context.Context, pkg string) (outcome, error) {
	t := dialect.TargetFor(r.req, pkg)
	check := t
	check.Version = ""

	installed, err := r.disc.Installed(ctx, check)
	if err != nil {
		return halt, err
	}
	if installed {
		outdated, err := r.disc.Outdated(ctx, check)
		if err != nil {
			return halt, err
		}
		if !outdated {
			r.unchanged(pkg, "Package is already upgraded: %s", pkg)
			return proceed, nil
		}
	}

	op := dialect.OpUpgrade
	if !installed {
		op = dialect.OpInstall
		if out, err := r.ensureEnvironment(ctx); err != nil || out == halt {
			return halt, err
		}
	}
	if r.req.DryRun {
		r.wouldChange(pkg, "Package would be upgraded: %s", pkg)
		return halt, nil
	}

	res, err := r.mutate(ctx, op, t)
	if err != nil {
		return halt, err
	}
	satisfied := r.dialect.AlreadySatisfied(op, res.Stdout)

	if installed, err = r.disc.Installed(ctx, check); err != nil {
		return halt, err
	}
	if !installed {
		return halt, r.notConverged(op, t, res)
	}
	outdated, err := r.disc.Outdated(ctx, check)
	if err != nil {
		return halt, err
	}
	if outdated {
		return halt, r.notConverged(op, t, res)
	}
	if satisfied {
		r.unchanged(pkg, "Package is already upgraded: %s", pkg)
		return proceed, nil
	}
	r.changed(pkg, "Package upgraded: %s", pkg)
	return proceed, nil
}

func (r *run) uninstall(ctx context.Context, pkg string) (outcome, error) {
	t := dialect.TargetFor(r.req, pkg)
	t.Version = ""

	installed, err := r.disc.Installed(ctx, t)
	if err != nil {
		return halt, err
	}
	if !installed {
		r.unchanged(pkg, "Package already uninstalled: %s", pkg)
		return proceed, nil
	}
	if r.req.DryRun {
		r.wouldChange(pkg, "Package would be uninstalled: %s", pkg)
		return halt, nil
	}

	res, err := r.mutate(ctx, dialect.OpUninstall, t)
	if err != nil {
		return halt, err
	}

	if installed, err = r.disc.Installed(ctx, t); err != nil {
		return halt, err
	}
	if installed {
		return halt, r.notConverged(dialect.OpUninstall, t, res)
	}
	r.changed(pkg, "Package uninstalled: %s", pkg)
	return proceed, nil
}

// link runs link or unlink. Neither has a discoverable end state, so a zero
// exit is the only confirmation.
func (r *run) link(ctx context.Context, pkg string, op dialect.Op, verb string) (outcome, error) {
	t := dialect.TargetFor(r.req, pkg)
	t.Version = ""

	installed, err := r.disc.Installed(ctx, t)
	if err != nil {
		return halt, err
	}
	if !installed {
		return halt, convergeerrors.NewPreconditionError(pkg, fmt.Sprintf("Package not installed: %s.", pkg))
	}
	if r.req.DryRun {
		r.wouldChange(pkg, "Package would be %s: %s", verb, pkg)
		return halt, nil
	}

	if _, err := r.mutate(ctx, op, t); err != nil {
		var cmdErr *convergeerrors.CommandFailedError
		if errors.As(err, &cmdErr) {
			r.log.With("package", pkg).Warn(cmdErr.Diagnostic)
			return halt, convergeerrors.NewCommandFailedError(cmdErr.Argv, cmdErr.ExitCode, fmt.Sprintf("Package could not be %s: %s.", verb, pkg), err)
		}
		return halt, err
	}
	r.changed(pkg, "Package %s: %s", verb, pkg)
	return proceed, nil
}

// ensureEnvironment creates the requested environment the first time a run
// needs to install into it. Creation counts as its own unit of work.
func (r *run) ensureEnvironment(ctx context.Context) (outcome, error) {
	env := r.req.Environment
	if env == "" || !r.req.Tool.Scoped() || r.envChecked {
		return proceed, nil
	}
	r.envChecked = true

	exists, err := r.disc.EnvironmentExists(ctx, env)
	if err != nil {
		return halt, err
	}
	if exists {
		return proceed, nil
	}
	if r.req.DryRun {
		r.wouldChange(env, "Environment would be created: %s", env)
		return halt, nil
	}

	t := dialect.Target{Environment: env, Channels: r.req.Channels}
	res, err := r.mutate(ctx, dialect.OpCreateEnv, t)
	if err != nil {
		return halt, err
	}
	if exists, err = r.disc.EnvironmentExists(ctx, env); err != nil {
		return halt, err
	}
	if !exists {
		return halt, r.notConverged(dialect.OpCreateEnv, t, res)
	}
	r.changed(env, "Environment created: %s", env)
	return proceed, nil
}

func (r *run) removeEnvironment(ctx context.Context) (outcome, error) {
	env := r.req.Environment
	fail := func(err error) (outcome, error) {
		r.agg.fail(env, err)
		return halt, err
	}

	exists, err := r.disc.EnvironmentExists(ctx, env)
	if err != nil {
		return fail(err)
	}
	if !exists {
		r.unchanged(env, "Environment already absent: %s", env)
		return proceed, nil
	}
	if r.req.DryRun {
		r.wouldChange(env, "Environment would be removed: %s", env)
		return halt, nil
	}

	t := dialect.Target{Environment: env}
	res, err := r.mutate(ctx, dialect.OpRemoveEnv, t)
	if err != nil {
		return fail(err)
	}
	if exists, err = r.disc.EnvironmentExists(ctx, env); err != nil {
		return fail(err)
	}
	if exists {
		return fail(r.notConverged(dialect.OpRemoveEnv, t, res))
	}
	r.changed(env, "Environment removed: %s", env)
	return proceed, nil
}

func (r *run) updateSelf(ctx context.Context) (outcome, error) {
	name := r.dialect.DisplayName()
	if r.req.DryRun {
		r.wouldChange(r.dialect.Executable(), "%s would be updated.", name)
		return halt, nil
	}

	res, err := r.mutate(ctx, dialect.OpUpdateSelf, dialect.Target{})
	if err != nil {
		r.agg.fail(r.dialect.Executable(), err)
		return halt, err
	}
	if r.dialect.AlreadySatisfied(dialect.OpUpdateSelf, res.Stdout) {
		r.unchanged(r.dialect.Executable(), "%s already up-to-date.", name)
		return proceed, nil
	}
	r.changed(r.dialect.Executable(), "%s updated successfully.", name)
	return proceed, nil
}

func (r *run) upgradeAll(ctx context.Context) (outcome, error) {
	name := r.dialect.DisplayName()
	const target = "all packages"
	if r.req.DryRun {
		r.wouldChange(target, "%s packages would be upgraded.", name)
		return halt, nil
	}

	t := dialect.Target{Environment: r.req.Environment, Channels: r.req.Channels, Options: r.req.Options}
	res, err := r.mutate(ctx, dialect.OpUpgradeAll, t)
	if err != nil {
		r.agg.fail(target, err)
		return halt, err
	}
	if r.dialect.AlreadySatisfied(dialect.OpUpgradeAll, res.Stdout) {
		r.unchanged(target, "%s packages already upgraded.", name)
		return proceed, nil
	}
	r.changed(target, "%s upgraded.", name)
	return proceed, nil
}

// mutate runs one state-changing command. A process that could not run or
// exited non-zero is a CommandFailedError carrying the tool's diagnostic.
func (r *run) mutate(ctx context.Context, op dialect.Op, t dialect.Target) (runner.Result, error) {
	args, err := r.dialect.CommandArgs(op, t)
	if err != nil {
		return runner.Result{}, err
	}
	argv := dialect.Argv(r.exe, args)

	r.log.With("op", string(op)).Debug(fmt.Sprintf("running %s", op))
	res, err := r.runner.Run(ctx, argv)
	if err != nil {
		return res, convergeerrors.NewCommandFailedError(argv, res.ExitCode, res.Diagnostic(), err)
	}
	if !res.Success() {
		return res, convergeerrors.NewCommandFailedError(argv, res.ExitCode, res.Diagnostic(), nil)
	}
	return res, nil
}

func (r *run) notConverged(op dialect.Op, t dialect.Target, res runner.Result) error {
	args, _ := r.dialect.CommandArgs(op, t)
	diag := res.Diagnostic()
	if diag == "" {
		diag = fmt.Sprintf("%s reported success but the state did not change", op)
	}
	return convergeerrors.NewCommandFailedError(dialect.Argv(r.exe, args), res.ExitCode, diag, nil)
}

func (r *run) changed(target, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.agg.changed(target, msg)
	r.log.With("target", target).Info(msg)
}

func (r *run) unchanged(target, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.agg.unchanged(target, msg)
	r.log.With("target", target).Info(msg)
}

func (r *run) wouldChange(target, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.agg.wouldChange(target, msg)
	r.log.With("target", target).Info(msg)
}
