package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/alexisbeaulieu97/converge/internal/request"
	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

// AppDirName is the directory under the XDG config home holding the defaults file.
const AppDirName = "converge"

var defaultsFileNames = []string{"config.yaml", "config.yml", "config.toml"}

// ToolDefaults are per-tool values used when a request leaves them empty.
type ToolDefaults struct {
	Path     string   `yaml:"path" toml:"path"`
	Channels []string `yaml:"channels" toml:"channels"`
	Options  []string `yaml:"options" toml:"options"`
}

// Defaults is the user defaults file.
type Defaults struct {
	LogLevel string       `yaml:"log_level" toml:"log_level"`
	Brew     ToolDefaults `yaml:"brew" toml:"brew"`
	Conda    ToolDefaults `yaml:"conda" toml:"conda"`
}

// DefaultsPath returns the first existing defaults file under the XDG config
// home, or "" when there is none.
func DefaultsPath() string {
	return findDefaults(xdg.ConfigHome)
}

func findDefaults(configHome string) string {
	if configHome == "" {
		return ""
	}
	for _, name := range defaultsFileNames {
		candidate := filepath.Join(configHome, AppDirName, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// LoadDefaults reads the defaults file at path. An empty path means the XDG
// location; a missing XDG file yields empty defaults.
func LoadDefaults(path string) (*Defaults, error) {
	if path == "" {
		path = DefaultsPath()
	}
	if path == "" {
		return &Defaults{}, nil
	}

	var d Defaults
	if err := readFile(path, &d); err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Defaults) validate() error {
	tools := []struct {
		name string
		td   ToolDefaults
	}{{"brew", d.Brew}, {"conda", d.Conda}}

	for _, entry := range tools {
		tool, td := entry.name, entry.td
		if !request.ValidSearchPath(td.Path) {
			return convergeerrors.NewValidationError(tool+".path", td.Path, "invalid search path", nil)
		}
		for i, ch := range td.Channels {
			if ch == "" || !request.ValidChannel(ch) {
				return convergeerrors.NewValidationError(fmt.Sprintf("%s.channels[%d]", tool, i), ch, "invalid channel name", nil)
			}
		}
	}
	if len(d.Brew.Channels) > 0 {
		return convergeerrors.NewValidationError("brew.channels", "", "channels are not supported by brew", nil)
	}
	return nil
}

// For returns the defaults for tool.
func (d *Defaults) For(tool request.Tool) ToolDefaults {
	if d == nil {
		return ToolDefaults{}
	}
	switch tool {
	case request.ToolBrew:
		return d.Brew
	case request.ToolConda:
		return d.Conda
	default:
		return ToolDefaults{}
	}
}

// Apply fills fields raw leaves empty from the defaults of raw's tool.
func (d *Defaults) Apply(raw *request.Raw) {
	tool, err := request.ParseTool(raw.Tool)
	if err != nil {
		return
	}
	td := d.For(tool)
	if raw.Path == "" {
		raw.Path = td.Path
	}
	if len(raw.Channels) == 0 && len(td.Channels) > 0 {
		raw.Channels = append([]string(nil), td.Channels...)
	}
	if len(raw.Options) == 0 && len(td.Options) > 0 {
		raw.Options = append([]string(nil), td.Options...)
	}
}
