package config

import (
	"github.com/alexisbeaulieu97/converge/internal/request"
)

// LoadRequest reads a request file. The result still has to go through
// request.New before anything runs.
func LoadRequest(path string) (request.Raw, error) {
	var raw request.Raw
	if err := readFile(path, &raw); err != nil {
		return request.Raw{}, err
	}
	return raw, nil
}
