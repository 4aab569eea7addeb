package usecase

import (
	"errors"
	"fmt"

	"github.com/fischerwulf/map-dev/internal/provider"
	"github.com/fischerwulf/map-dev/internal/repository/style"
)

// SourceDescriptor is everything needed to reach one tile source:
// the upstream URL template, the provider (resolved once, carried as
// data), and the auth parameters to merge into the query string.
type SourceDescriptor struct {
	Template string
	Provider provider.Provider
	Auth     map[string]string
}

// AssetDescriptor points at a style's original sprite and glyph URLs.
type AssetDescriptor struct {
	Sprite   string
	Glyphs   string
	Provider provider.Provider
	Auth     map[string]string
}

// SourceResolver turns a (style, source) pair into a SourceDescriptor
// using the on-disk style descriptors and the immutable auth table.
type SourceResolver struct {
	styles *style.Repository
	auth   provider.AuthTable
}

func NewSourceResolver(styles *style.Repository, auth provider.AuthTable) *SourceResolver {
	return &SourceResolver{
		styles: styles,
		auth:   auth,
	}
}

func (r *SourceResolver) Resolve(styleName, sourceName string) (SourceDescriptor, error) {
	meta, err := r.loadMeta(styleName)
	if err != nil {
		return SourceDescriptor{}, err
	}

	template, ok := meta.TileSources[sourceName]
	if !ok {
		return SourceDescriptor{}, fmt.Errorf("source %q not found in style %q: %w", sourceName, styleName, ErrNotFound)
	}

	p := r.providerFor(styleName, meta)

	return SourceDescriptor{
		Template: template,
		Provider: p,
		Auth:     r.auth.Params(p),
	}, nil
}

// ResolveAssets returns the sprite/glyph origins for a style. Either
// field may be empty when the style has no such asset.
func (r *SourceResolver) ResolveAssets(styleName string) (AssetDescriptor, error) {
	meta, err := r.loadMeta(styleName)
	if err != nil {
		return AssetDescriptor{}, err
	}

	p := r.providerFor(styleName, meta)

	return AssetDescriptor{
		Sprite:   meta.OriginalSprite,
		Glyphs:   meta.OriginalGlyphs,
		Provider: p,
		Auth:     r.auth.Params(p),
	}, nil
}

func (r *SourceResolver) loadMeta(styleName string) (*style.Meta, error) {
	s, err := r.styles.LoadScraped(styleName)
	if err != nil {
		if errors.Is(err, style.ErrStyleNotFound) {
			return nil, fmt.Errorf("style %q: %w", styleName, ErrNotFound)
		}
		return nil, err
	}
	if s.Meta == nil {
		return nil, fmt.Errorf("style %q has no tile metadata: %w", styleName, ErrNotFound)
	}
	return s.Meta, nil
}

// providerFor prefers the explicit identifier from the descriptor and
// falls back to deriving one from the style name.
func (r *SourceResolver) providerFor(styleName string, meta *style.Meta) provider.Provider {
	if meta.TileAuthProvider != "" {
		return provider.FromID(meta.TileAuthProvider)
	}
	return provider.FromStyleName(styleName)
}
