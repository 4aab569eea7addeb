package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fischerwulf/map-dev/internal/upstream"
	"github.com/fischerwulf/map-dev/pkg/logger"
)

// AssetResult is a proxied sprite or glyph payload.
type AssetResult struct {
	Data        []byte
	ContentType string
}

// AssetUseCase proxies sprite sheets and glyph ranges from a style's
// original asset origin, with the same auth injection and provider
// headers as tiles. Assets are small and served with long-lived
// browser cache headers, so they bypass the tile cache.
type AssetUseCase struct {
	resolver *SourceResolver
	fetcher  *upstream.Fetcher
	logger   logger.Logger
}

func NewAssetUseCase(r *SourceResolver, f *upstream.Fetcher, l logger.Logger) *AssetUseCase {
	return &AssetUseCase{
		resolver: r,
		fetcher:  f,
		logger:   l,
	}
}

// GetSprite serves one sprite file. spriteRef is the style name plus an
// optional "@2x" scale and ".json"/".png" extension, as requested by
// the map client (e.g. "maptiler-outdoor@2x.json").
func (uc *AssetUseCase) GetSprite(ctx context.Context, spriteRef string) (AssetResult, error) {
	styleName, suffix := splitSpriteRef(spriteRef)

	assets, err := uc.resolver.ResolveAssets(styleName)
	if err != nil {
		return AssetResult{}, err
	}
	if assets.Sprite == "" {
		return AssetResult{}, fmt.Errorf("no sprite source for style %q: %w", styleName, ErrNotFound)
	}

	targetURL, err := upstream.MergeAuth(assets.Sprite+suffix, assets.Auth)
	if err != nil {
		return AssetResult{}, err
	}

	data, contentType, err := uc.fetcher.Fetch(ctx, targetURL, assets.Provider)
	if err != nil {
		return AssetResult{}, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return AssetResult{Data: data, ContentType: contentType}, nil
}

// GetGlyphs serves one glyph range for a fontstack.
func (uc *AssetUseCase) GetGlyphs(ctx context.Context, styleName, fontstack, rangeFile string) (AssetResult, error) {
	assets, err := uc.resolver.ResolveAssets(styleName)
	if err != nil {
		return AssetResult{}, err
	}
	if assets.Glyphs == "" {
		return AssetResult{}, fmt.Errorf("no glyph source for style %q: %w", styleName, ErrNotFound)
	}

	rangeValue := strings.TrimSuffix(rangeFile, ".pbf")
	target := strings.NewReplacer(
		"{fontstack}", fontstack,
		"{range}", rangeValue,
	).Replace(assets.Glyphs)

	targetURL, err := upstream.MergeAuth(target, assets.Auth)
	if err != nil {
		return AssetResult{}, err
	}

	data, _, err := uc.fetcher.Fetch(ctx, targetURL, assets.Provider)
	if err != nil {
		return AssetResult{}, err
	}

	return AssetResult{Data: data, ContentType: "application/x-protobuf"}, nil
}

// splitSpriteRef separates "name[@2x][.json|.png]" into the style name
// and the suffix to append to the original sprite URL.
func splitSpriteRef(ref string) (name, suffix string) {
	name = ref
	ext := ""
	if strings.HasSuffix(name, ".json") {
		ext = ".json"
		name = strings.TrimSuffix(name, ".json")
	} else if strings.HasSuffix(name, ".png") {
		ext = ".png"
		name = strings.TrimSuffix(name, ".png")
	}
	if strings.HasSuffix(name, "@2x") {
		ext = "@2x" + ext
		name = strings.TrimSuffix(name, "@2x")
	}
	return name, ext
}
