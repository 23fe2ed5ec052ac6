package locator

import (
	"os"
	"path/filepath"

	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

// SystemDirs are searched after the configured directories and $PATH.
var SystemDirs = []string{"/sbin", "/usr/sbin", "/usr/local/sbin"}

// SearchDirs returns the ordered, de-duplicated directories Locate inspects.
func SearchDirs(dirs []string) []string {
	var ordered []string
	seen := make(map[string]struct{})
	add := func(dir string) {
		if dir == "" {
			return
		}
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		ordered = append(ordered, dir)
	}

	for _, dir := range dirs {
		add(dir)
	}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		add(dir)
	}
	for _, dir := range SystemDirs {
		add(dir)
	}
	return ordered
}

// Locate returns the absolute path of the first executable regular file named
// name found in SearchDirs(dirs).
func Locate(name string, dirs []string) (string, error) {
	searched := SearchDirs(dirs)
	for _, dir := range searched {
		candidate := filepath.Join(dir, name)
		if !isExecutable(candidate) {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		return abs, nil
	}
	return "", convergeerrors.NewToolNotFoundError(name, searched)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
