package style

import (
	"errors"
	"fmt"
)

// ErrStyleNotFound is returned when no style with the requested name
// exists on disk.
var ErrStyleNotFound = errors.New("style not found")

// InvalidDescriptorError reports a style file whose content or _meta
// descriptor does not parse or validate. Distinct from ErrStyleNotFound
// so a broken file is not mistaken for a missing one.
type InvalidDescriptorError struct {
	Style string
	Err   error
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid style descriptor %q: %v", e.Style, e.Err)
}

func (e *InvalidDescriptorError) Unwrap() error {
	return e.Err
}

// Meta is the descriptor the style-scraping pipeline embeds in each
// transformed style under the "_meta" key. It records where the proxied
// assets and tiles really live and which provider's credentials apply.
type Meta struct {
	Source           string            `json:"source"`
	OriginalSprite   string            `json:"original_sprite"`
	OriginalGlyphs   string            `json:"original_glyphs"`
	TileAuthProvider string            `json:"tile_auth_provider"`
	TileSources      map[string]string `json:"tile_sources" validate:"dive,required"`
}

// Info describes one available style for listings.
type Info struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// Style is a loaded style document. Meta is nil for styles that carry
// no descriptor (custom and plain raster styles).
type Style struct {
	Doc  map[string]any
	Meta *Meta
}
