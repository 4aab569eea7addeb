package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fischerwulf/map-dev/pkg/logger"
)

// AuthTable maps provider identifiers to the query parameters their
// tile URLs require (api key, access token, ...). Loaded once at
// startup and read-only afterwards; reloading means constructing a new
// table, never mutating a shared one.
type AuthTable struct {
	params map[string]map[string]string
}

// LoadAuthTable reads the secrets file produced by the style scraper.
// A missing file is not an error: most open providers need no auth.
func LoadAuthTable(path string, l logger.Logger) (AuthTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Warn("secrets file not found, proceeding without provider auth", "path", path)
			return AuthTable{params: map[string]map[string]string{}}, nil
		}
		return AuthTable{}, fmt.Errorf("failed to read secrets file %s: %w", path, err)
	}

	var params map[string]map[string]string
	if err := json.Unmarshal(data, &params); err != nil {
		return AuthTable{}, fmt.Errorf("malformed secrets file %s: %w", path, err)
	}

	l.Info("provider auth table loaded", "path", path, "providers", len(params))

	return AuthTable{params: params}, nil
}

// NewAuthTable builds a table from an in-memory map. Used in tests.
func NewAuthTable(params map[string]map[string]string) AuthTable {
	if params == nil {
		params = map[string]map[string]string{}
	}
	return AuthTable{params: params}
}

// Params returns the auth parameters for a provider. An unknown
// provider yields an empty set, not an error.
func (t AuthTable) Params(p Provider) map[string]string {
	src, ok := t.params[string(p)]
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
