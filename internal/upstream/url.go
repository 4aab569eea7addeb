package upstream

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BuildTileURL expands the {z}/{x}/{y} placeholders in a tile URL
// template and merges auth parameters into the query string. Auth wins
// over a template parameter of the same name. Query re-serialization is
// deterministic (keys sorted), so identical inputs always yield
// identical URLs.
func BuildTileURL(template string, z, x, y int, auth map[string]string) (string, error) {
	expanded := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(template)

	return MergeAuth(expanded, auth)
}

// MergeAuth adds auth parameters to a URL's query string, overriding
// existing parameters on key collision.
func MergeAuth(rawURL string, auth map[string]string) (string, error) {
	if len(auth) == 0 {
		return rawURL, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("unparsable upstream url %q: %w", rawURL, err)
	}

	params := parsed.Query()
	for k, v := range auth {
		params.Set(k, v)
	}
	parsed.RawQuery = params.Encode()

	return parsed.String(), nil
}
