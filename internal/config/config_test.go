package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/converge/internal/request"
	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadRequestYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "request.yaml", `tool: conda
packages:
  - numpy
  - scipy
env: py3
channels: [bioconda]
options: [no-deps]
state: present
update_self: true
`)

	raw, err := LoadRequest(path)
	require.NoError(t, err)
	require.Equal(t, "conda", raw.Tool)
	require.Equal(t, []string{"numpy", "scipy"}, raw.Packages)
	require.Equal(t, "py3", raw.Environment)
	require.Equal(t, []string{"bioconda"}, raw.Channels)
	require.True(t, raw.UpdateSelf)

	req, err := request.New(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"--no-deps"}, req.Options)
}

func TestLoadRequestTOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "request.toml", `tool = "brew"
packages = ["foo"]
state = "head"
path = "/opt/brew/bin"
`)

	raw, err := LoadRequest(path)
	require.NoError(t, err)
	require.Equal(t, "brew", raw.Tool)
	require.Equal(t, "head", raw.State)
	require.Equal(t, "/opt/brew/bin", raw.Path)
}

func TestLoadRequestErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := []struct {
		name     string
		file     string
		contents string
		line     int
	}{
		{name: "yaml unknown key", file: "unknown.yaml", contents: "tool: brew\nflavour: sweet\n", line: 2},
		{name: "yaml wrong type", file: "type.yml", contents: "tool: brew\npackages: 3\n", line: 2},
		{name: "toml syntax", file: "syntax.toml", contents: "tool = \"brew\"\npackages = [\n"},
		{name: "toml unknown key", file: "unknown.toml", contents: "tool = \"brew\"\nflavour = \"sweet\"\n"},
		{name: "unknown extension", file: "request.json", contents: "{}"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadRequest(writeFile(t, dir, tc.file, tc.contents))
			var parseErr *convergeerrors.ParseError
			require.ErrorAs(t, err, &parseErr)
			if tc.line > 0 {
				require.Equal(t, tc.line, parseErr.Line)
			}
		})
	}
}

func TestLoadRequestMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadRequest(filepath.Join(t.TempDir(), "nope.yaml"))
	var parseErr *convergeerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Zero(t, parseErr.Line)
}

func TestLoadDefaultsAndApply(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "config.yaml", `log_level: debug
brew:
  path: /opt/brew/bin
  options: [verbose]
conda:
  path: /opt/conda/bin
  channels: [conda-forge]
`)

	d, err := LoadDefaults(path)
	require.NoError(t, err)
	require.Equal(t, "debug", d.LogLevel)

	raw := request.Raw{Tool: "conda", Packages: []string{"numpy"}}
	d.Apply(&raw)
	require.Equal(t, "/opt/conda/bin", raw.Path)
	require.Equal(t, []string{"conda-forge"}, raw.Channels)
	require.Empty(t, raw.Options)

	raw = request.Raw{Tool: "brew", Path: "/custom/bin", Options: []string{"HEAD"}}
	d.Apply(&raw)
	require.Equal(t, "/custom/bin", raw.Path)
	require.Equal(t, []string{"HEAD"}, raw.Options)
}

func TestLoadDefaultsTOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "config.toml", `log_level = "warn"

[conda]
channels = ["bioconda"]
`)

	d, err := LoadDefaults(path)
	require.NoError(t, err)
	require.Equal(t, "warn", d.LogLevel)
	require.Equal(t, []string{"bioconda"}, d.For(request.ToolConda).Channels)
}

func TestLoadDefaultsRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadDefaults(writeFile(t, dir, "bad-path.yaml", "brew:\n  path: \"/bin; rm\"\n"))
	var validationErr *convergeerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "brew.path", validationErr.Field)

	_, err = LoadDefaults(writeFile(t, dir, "brew-channels.yaml", "brew:\n  channels: [x]\n"))
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "brew.channels", validationErr.Field)
}

func TestFindDefaults(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	require.Equal(t, "", findDefaults(home))
	require.Equal(t, "", findDefaults(""))

	want := writeFile(t, home, filepath.Join(AppDirName, "config.toml"), "")
	require.Equal(t, want, findDefaults(home))

	want = writeFile(t, home, filepath.Join(AppDirName, "config.yaml"), "")
	require.Equal(t, want, findDefaults(home))
}

func TestNilDefaultsAreEmpty(t *testing.T) {
	t.Parallel()

	var d *Defaults
	require.Equal(t, ToolDefaults{}, d.For(request.ToolBrew))
}

func TestExampleFilesAreValid(t *testing.T) {
	t.Parallel()

	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		if filepath.Base(path) == "config.yaml" {
			defaults, err := LoadDefaults(path)
			require.NoError(t, err, path)
			require.Equal(t, []string{"conda-forge"}, defaults.For(request.ToolConda).Channels)
			continue
		}

		raw, err := LoadRequest(path)
		require.NoError(t, err, path)
		_, err = request.New(raw)
		require.NoError(t, err, path)
	}
}
