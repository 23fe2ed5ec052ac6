package dialect

import (
	"strings"

	"github.com/alexisbeaulieu97/converge/internal/request"
)

const condaSatisfiedMarker = "All requested packages already installed"

// Conda drives conda, scoping every package operation to the named
// environment and the requested channels.
type Conda struct{}

func (Conda) Tool() request.Tool     { return request.ToolConda }
func (Conda) Executable() string     { return "conda" }
func (Conda) DisplayName() string    { return "Conda" }
func (Conda) MinimumVersion() string { return "4.0.11" }

func (Conda) DefaultSearchPath() []string {
	return []string{"/mnt/gvl/apps/anaconda_ete/bin"}
}

func (c Conda) QueryArgs(q Query, t Target) ([]string, error) {
	switch q {
	case QueryInfo:
		return layout{sub: []string{"list"}, env: t.Environment, options: []string{"--full-name"}, positional: []string{t.Package}}.args(), nil
	case QueryOutdated:
		return layout{sub: []string{"update"}, env: t.Environment, channels: t.Channels, options: []string{"--dry-run"}, positional: []string{t.Package}}.args(), nil
	case QueryEnvList:
		return []string{"env", "list"}, nil
	case QuerySelf:
		return []string{"info"}, nil
	default:
		return nil, unsupported(c.Tool(), q)
	}
}

func (c Conda) CommandArgs(op Op, t Target) ([]string, error) {
	yes := []string{"--yes"}
	switch op {
	case OpInstall:
		ref := t.Package
		if t.Version != "" {
			ref += "=" + t.Version
		}
		return layout{sub: []string{"install"}, env: t.Environment, channels: t.Channels, confirm: yes, options: t.Options, positional: []string{ref}}.args(), nil
	case OpUpgrade:
		return layout{sub: []string{"update"}, env: t.Environment, channels: t.Channels, confirm: yes, options: t.Options, positional: []string{t.Package}}.args(), nil
	case OpUninstall:
		return layout{sub: []string{"remove"}, env: t.Environment, confirm: yes, positional: []string{t.Package}}.args(), nil
	case OpCreateEnv:
		return layout{sub: []string{"create"}, env: t.Environment, channels: t.Channels, confirm: yes}.args(), nil
	case OpRemoveEnv:
		return layout{sub: []string{"env", "remove"}, env: t.Environment, confirm: yes}.args(), nil
	case OpUpdateSelf:
		return layout{sub: []string{"update"}, confirm: yes, positional: []string{"conda"}}.args(), nil
	case OpUpgradeAll:
		return layout{sub: []string{"update"}, env: t.Environment, channels: t.Channels, confirm: yes, options: []string{"--all"}}.args(), nil
	default:
		return nil, unsupported(c.Tool(), op)
	}
}

// Installed looks for a `conda list` row whose first field is pkg and, when
// version is set, whose second field is version.
func (Conda) Installed(stdout, pkg, version string) bool {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] != pkg {
			continue
		}
		if version == "" || (len(fields) > 1 && fields[1] == version) {
			return true
		}
	}
	return false
}

// EnvironmentExists matches the first field of each `conda env list` row exactly.
func (Conda) EnvironmentExists(stdout, env string) bool {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == env || strings.Fields(line)[0] == env {
			return true
		}
	}
	return false
}

func (Conda) AlreadySatisfied(op Op, stdout string) bool {
	switch op {
	case OpInstall, OpUpgrade, OpUpgradeAll, OpUpdateSelf:
		return containsFold(stdout, condaSatisfiedMarker)
	default:
		return false
	}
}

// UpdatePlanned scans `conda update --dry-run` output. Conda exits zero from a
// dry run either way, so only the no-op marker tells an up-to-date package apart.
func (Conda) UpdatePlanned(stdout string) bool {
	return !containsFold(stdout, condaSatisfiedMarker)
}

// SelfReport reads `conda info` output: the second whitespace token is the
// tool's name and the third its version.
func (Conda) SelfReport(stdout string) (string, string, bool) {
	tokens := strings.Fields(stdout)
	if len(tokens) < 3 {
		return "", "", false
	}
	return tokens[1], tokens[2], true
}
