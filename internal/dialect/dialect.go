// Package dialect holds the per-tool command vocabulary and output parsing.
// Nothing outside this package knows a subcommand name or an output marker.
package dialect

import (
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/converge/internal/request"
)

// ErrUnsupported is returned for an operation the tool has no command for.
var ErrUnsupported = errors.New("operation not supported by tool")

// Op names a mutating operation.
type Op string

const (
	OpInstall     Op = "install"
	OpInstallHead Op = "install_head"
	OpUpgrade     Op = "upgrade"
	OpUninstall   Op = "uninstall"
	OpLink        Op = "link"
	OpUnlink      Op = "unlink"
	OpCreateEnv   Op = "create_env"
	OpRemoveEnv   Op = "remove_env"
	OpUpdateSelf  Op = "update_self"
	OpUpgradeAll  Op = "upgrade_all"
)

// Query names a read-only question asked of the tool.
type Query string

const (
	QueryInfo     Query = "info"
	QueryOutdated Query = "outdated"
	QueryEnvList  Query = "env_list"
	QuerySelf     Query = "self"
)

// Target carries everything an argv may reference. Only validated values belong here.
type Target struct {
	Package     string
	Version     string
	Environment string
	Channels    []string
	Options     []string
}

// TargetFor builds the Target for pkg within req.
func TargetFor(req *request.Request, pkg string) Target {
	return Target{
		Package:     pkg,
		Version:     req.Version,
		Environment: req.Environment,
		Channels:    req.Channels,
		Options:     req.Options,
	}
}

// Parser interprets the stdout of read-only queries and mutating commands.
type Parser interface {
	// Installed reports whether info output shows pkg installed. With a
	// non-empty version, the installed version must match too.
	Installed(stdout, pkg, version string) bool
	// EnvironmentExists reports whether an environment listing names env.
	EnvironmentExists(stdout, env string) bool
	// AlreadySatisfied reports whether a successful op printed its no-op marker.
	AlreadySatisfied(op Op, stdout string) bool
	// UpdatePlanned reports whether an outdated query that exited zero still
	// planned an update.
	UpdatePlanned(stdout string) bool
	// SelfReport extracts the tool's self-identifying name and version from QuerySelf output.
	SelfReport(stdout string) (name, version string, ok bool)
}

// Dialect is the command vocabulary of one package manager.
type Dialect interface {
	Parser

	Tool() request.Tool
	// Executable is the file name the locator searches for.
	Executable() string
	// DisplayName is used in user-facing messages.
	DisplayName() string
	// DefaultSearchPath is appended after configured directories.
	DefaultSearchPath() []string
	// MinimumVersion is the oldest version the dialect drives; empty means no gate.
	MinimumVersion() string

	QueryArgs(q Query, t Target) ([]string, error)
	CommandArgs(op Op, t Target) ([]string, error)
}

// For returns the dialect for tool.
func For(tool request.Tool) (Dialect, error) {
	switch tool {
	case request.ToolBrew:
		return Brew{}, nil
	case request.ToolConda:
		return Conda{}, nil
	default:
		return nil, fmt.Errorf("no dialect for tool %q", tool)
	}
}

// Argv prefixes args with the resolved executable path.
func Argv(exe string, args []string) []string {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, exe)
	return append(argv, args...)
}

// layout assembles arguments in the order every tool expects: subcommand tokens,
// environment and channel flags, confirmation flags, options, then positionals.
type layout struct {
	sub        []string
	env        string
	channels   []string
	confirm    []string
	options    []string
	positional []string
}

func (l layout) args() []string {
	var out []string
	out = append(out, l.sub...)
	if l.env != "" {
		out = append(out, "--name", l.env)
	}
	for _, ch := range l.channels {
		out = append(out, "--channel", ch)
	}
	out = append(out, l.confirm...)
	out = append(out, l.options...)
	for _, p := range l.positional {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func unsupported(tool request.Tool, what any) error {
	return fmt.Errorf("%s %v: %w", tool, what, ErrUnsupported)
}
