package request

import (
	"strings"

	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

// Raw is untyped run input as it arrives from flags or a request file.
type Raw struct {
	Tool        string   `yaml:"tool" toml:"tool"`
	Packages    []string `yaml:"packages" toml:"packages"`
	Version     string   `yaml:"version" toml:"version"`
	Environment string   `yaml:"env" toml:"env"`
	Channels    []string `yaml:"channels" toml:"channels"`
	Options     []string `yaml:"options" toml:"options"`
	Path        string   `yaml:"path" toml:"path"`
	State       string   `yaml:"state" toml:"state"`
	UpdateSelf  bool     `yaml:"update_self" toml:"update_self"`
	UpgradeAll  bool     `yaml:"upgrade_all" toml:"upgrade_all"`
	DryRun      bool     `yaml:"dry_run" toml:"dry_run"`
}

// Request is a validated description of one reconciliation pass.
type Request struct {
	Tool        Tool     `field:"tool" validate:"required,oneof=brew conda"`
	Packages    []string `field:"packages" validate:"dive,required,pkgname"`
	Version     string   `field:"version" validate:"pkgversion"`
	Environment string   `field:"env" validate:"envname"`
	Channels    []string `field:"channels" validate:"dive,required,channel"`
	Options     []string `field:"options" validate:"dive,required,pkgoption"`
	SearchPath  []string `field:"path" validate:"dive,required,exepath"`
	State       State    `field:"state" validate:"required"`
	UpdateSelf  bool     `field:"update_self"`
	UpgradeAll  bool     `field:"upgrade_all"`
	DryRun      bool     `field:"dry_run"`
}

// New normalizes raw input and validates it. Nothing in raw reaches an argv
// unless New accepts it.
func New(raw Raw) (*Request, error) {
	tool, err := ParseTool(raw.Tool)
	if err != nil {
		return nil, convergeerrors.NewValidationError("tool", raw.Tool, "unsupported tool", err)
	}

	state, err := ParseState(raw.State)
	if err != nil {
		return nil, convergeerrors.NewValidationError("state", raw.State, "unsupported state", err)
	}

	if !ValidSearchPath(raw.Path) {
		return nil, convergeerrors.NewValidationError("path", raw.Path, "invalid search path", nil)
	}

	req := &Request{
		Tool:        tool,
		Packages:    trimAll(raw.Packages),
		Version:     strings.TrimSpace(raw.Version),
		Environment: strings.TrimSpace(raw.Environment),
		Channels:    trimAll(raw.Channels),
		Options:     NormalizeOptions(raw.Options),
		SearchPath:  SplitSearchPath(raw.Path),
		State:       state,
		UpdateSelf:  raw.UpdateSelf,
		UpgradeAll:  raw.UpgradeAll,
		DryRun:      raw.DryRun,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Clone returns a deep copy so callers can hand out a Request without sharing slices.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Packages = cloneStrings(r.Packages)
	clone.Channels = cloneStrings(r.Channels)
	clone.Options = cloneStrings(r.Options)
	clone.SearchPath = cloneStrings(r.SearchPath)
	return &clone
}

// HasPackageWork reports whether the request asks for any package-state
// operation: package targets, a full upgrade or an environment removal.
func (r *Request) HasPackageWork() bool {
	return len(r.Packages) > 0 || r.WantsUpgradeAll() || r.State == StateRemoveEnv
}

// WantsUpgradeAll reports whether every installed package should be upgraded.
// An upgraded state without targets means the same thing.
func (r *Request) WantsUpgradeAll() bool {
	return r.UpgradeAll || (r.State == StateUpgraded && len(r.Packages) == 0)
}

// NormalizeOptions trims each option and adds the "--" prefix when no dash is present.
func NormalizeOptions(opts []string) []string {
	if len(opts) == 0 {
		return nil
	}
	out := make([]string, 0, len(opts))
	for _, opt := range opts {
		opt = strings.TrimSpace(opt)
		if opt != "" && !strings.HasPrefix(opt, "-") {
			opt = "--" + opt
		}
		out = append(out, opt)
	}
	return out
}

// SplitSearchPath splits a ':'-separated directory list, dropping empty segments.
func SplitSearchPath(path string) []string {
	var dirs []string
	for _, dir := range strings.Split(path, ":") {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}
