package request

import (
	"fmt"
	"strings"
)

// State is the declarative state a run converges packages (or an environment) to.
type State string

const (
	StateInstalled State = "installed"
	StateAbsent    State = "absent"
	StateUpgraded  State = "upgraded"
	// StateHead installs the latest source revision instead of a released artifact.
	StateHead      State = "head"
	StateLinked    State = "linked"
	StateUnlinked  State = "unlinked"
	StateRemoveEnv State = "remove_env"
)

var stateAliases = map[string]State{
	"":            StateInstalled,
	"present":     StateInstalled,
	"installed":   StateInstalled,
	"latest":      StateUpgraded,
	"upgraded":    StateUpgraded,
	"head":        StateHead,
	"linked":      StateLinked,
	"unlinked":    StateUnlinked,
	"absent":      StateAbsent,
	"removed":     StateAbsent,
	"uninstalled": StateAbsent,
	"remove_env":  StateRemoveEnv,
}

// ParseState folds user-facing synonyms onto the canonical State. An empty
// string yields the default, StateInstalled.
func ParseState(raw string) (State, error) {
	state, ok := stateAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown state %q", raw)
	}
	return state, nil
}

func (s State) String() string {
	return string(s)
}

// Tool identifies the external package manager a run addresses.
type Tool string

const (
	ToolBrew  Tool = "brew"
	ToolConda Tool = "conda"
)

// ParseTool normalizes a tool name.
func ParseTool(raw string) (Tool, error) {
	switch Tool(strings.ToLower(strings.TrimSpace(raw))) {
	case ToolBrew, "linuxbrew", "homebrew":
		return ToolBrew, nil
	case ToolConda:
		return ToolConda, nil
	default:
		return "", fmt.Errorf("unknown tool %q", raw)
	}
}

// Supports reports whether the tool can converge to state.
func (t Tool) Supports(state State) bool {
	switch state {
	case StateInstalled, StateAbsent, StateUpgraded:
		return true
	case StateHead, StateLinked, StateUnlinked:
		return t == ToolBrew
	case StateRemoveEnv:
		return t == ToolConda
	default:
		return false
	}
}

// Scoped reports whether the tool understands environments and channels.
func (t Tool) Scoped() bool {
	return t == ToolConda
}
