package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeExecutable(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestLocatePrefersConfiguredDirs(t *testing.T) {
	configured := t.TempDir()
	onPath := t.TempDir()
	want := writeExecutable(t, configured, "brew", 0o755)
	writeExecutable(t, onPath, "brew", 0o755)
	t.Setenv("PATH", onPath)

	got, err := Locate("brew", []string{configured})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLocateFallsBackToPath(t *testing.T) {
	onPath := t.TempDir()
	want := writeExecutable(t, onPath, "conda", 0o755)
	t.Setenv("PATH", onPath)

	got, err := Locate("conda", []string{t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLocateSkipsNonExecutablesAndDirectories(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeExecutable(t, first, "brew", 0o644)
	require.NoError(t, os.Mkdir(filepath.Join(second, "brew"), 0o755))
	third := t.TempDir()
	want := writeExecutable(t, third, "brew", 0o700)
	t.Setenv("PATH", "")

	got, err := Locate("brew", []string{first, second, third})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLocateReturnsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "brew", 0o755)
	chdir(t, filepath.Dir(dir))
	t.Setenv("PATH", "")

	got, err := Locate("brew", []string{filepath.Base(dir)})
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(got))
}

func TestLocateNotFound(t *testing.T) {
	empty := t.TempDir()
	t.Setenv("PATH", empty)

	_, err := Locate("definitely-not-a-real-tool", []string{empty})

	var notFound *convergeerrors.ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "definitely-not-a-real-tool", notFound.Tool)
	require.Equal(t, []string{empty, "/sbin", "/usr/sbin", "/usr/local/sbin"}, notFound.Searched)
}

func TestSearchDirsOrderAndDedup(t *testing.T) {
	t.Setenv("PATH", "/usr/bin:/opt/a:/usr/bin")

	got := SearchDirs([]string{"/opt/a", "", "/opt/b"})
	require.Equal(t, []string{"/opt/a", "/opt/b", "/usr/bin", "/sbin", "/usr/sbin", "/usr/local/sbin"}, got)
}
