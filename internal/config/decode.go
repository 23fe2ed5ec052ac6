package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// readFile decodes a YAML or TOML file into out, chosen by extension.
// Unknown keys are rejected.
func readFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return convergeerrors.NewParseError(path, 0, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return convergeerrors.NewParseError(path, extractLine(err), err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			return convergeerrors.NewParseError(path, tomlLine(err), err)
		}
	default:
		return convergeerrors.NewParseError(path, 0, fmt.Errorf("unsupported file extension %q", filepath.Ext(path)))
	}
	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}

func tomlLine(err error) int {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, _ := decodeErr.Position()
		return row
	}
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) && len(strictErr.Errors) > 0 {
		row, _ := strictErr.Errors[0].Position()
		return row
	}
	return 0
}
