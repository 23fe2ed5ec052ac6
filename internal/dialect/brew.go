package dialect

import (
	"strings"

	"github.com/alexisbeaulieu97/converge/internal/request"
)

var brewInstalledMarkers = []string{"Built from source", "Poured from bottle"}

// Brew drives Linuxbrew/Homebrew. Versions are never part of an argv: brew
// installs whatever its formula provides and the version only narrows checks.
type Brew struct{}

func (Brew) Tool() request.Tool     { return request.ToolBrew }
func (Brew) Executable() string     { return "brew" }
func (Brew) DisplayName() string    { return "Linuxbrew" }
func (Brew) MinimumVersion() string { return "" }

func (Brew) DefaultSearchPath() []string {
	return []string{"/usr/local/bin", "/home/linuxbrew/.linuxbrew/bin"}
}

func (b Brew) QueryArgs(q Query, t Target) ([]string, error) {
	switch q {
	case QueryInfo:
		return layout{sub: []string{"info"}, positional: []string{t.Package}}.args(), nil
	case QueryOutdated:
		return layout{sub: []string{"outdated"}, positional: []string{t.Package}}.args(), nil
	default:
		return nil, unsupported(b.Tool(), q)
	}
}

func (b Brew) CommandArgs(op Op, t Target) ([]string, error) {
	switch op {
	case OpInstall:
		return layout{sub: []string{"install"}, options: t.Options, positional: []string{t.Package}}.args(), nil
	case OpInstallHead:
		return layout{sub: []string{"install"}, options: t.Options, positional: []string{t.Package, "--HEAD"}}.args(), nil
	case OpUpgrade, OpUninstall, OpLink, OpUnlink:
		return layout{sub: []string{string(op)}, options: t.Options, positional: []string{t.Package}}.args(), nil
	case OpUpdateSelf:
		return []string{"update"}, nil
	case OpUpgradeAll:
		return layout{sub: []string{"upgrade"}, options: t.Options}.args(), nil
	default:
		return nil, unsupported(b.Tool(), op)
	}
}

// Installed scans `brew info` output for an installation receipt. A version
// matches when the line above the receipt, the keg path, contains "/<version> ".
func (Brew) Installed(stdout, _, version string) bool {
	prev := ""
	for _, line := range strings.Split(stdout, "\n") {
		if containsAny(line, brewInstalledMarkers) {
			if version == "" || strings.Contains(prev, "/"+version+" ") {
				return true
			}
		}
		prev = line
	}
	return false
}

func (Brew) EnvironmentExists(string, string) bool { return false }

func (Brew) AlreadySatisfied(op Op, stdout string) bool {
	switch op {
	case OpUpdateSelf:
		return strings.TrimSpace(stdout) == "" || containsFold(stdout, "Already up-to-date.")
	case OpInstall, OpInstallHead:
		return containsFold(stdout, "is already installed")
	case OpUpgradeAll:
		return strings.TrimSpace(stdout) == ""
	default:
		return false
	}
}

// UpdatePlanned is always false: `brew outdated` answers through its exit code.
func (Brew) UpdatePlanned(string) bool { return false }

func (Brew) SelfReport(string) (string, string, bool) { return "", "", false }

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func containsFold(s, marker string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(marker))
}
