package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fischerwulf/map-dev/internal/repository/style"
	"github.com/fischerwulf/map-dev/pkg/logger"
)

// StyleResult is a style document ready to serve.
type StyleResult struct {
	Data []byte
	// NoStore marks styles the browser must never cache (the editable
	// custom style changes under the map client's feet).
	NoStore bool
}

// StyleUseCase serves style documents with their proxy URLs rebased
// onto the request's own origin, so the map client always talks back to
// this service for tiles and assets.
type StyleUseCase struct {
	styles *style.Repository
	logger logger.Logger
}

func NewStyleUseCase(styles *style.Repository, l logger.Logger) *StyleUseCase {
	return &StyleUseCase{
		styles: styles,
		logger: l,
	}
}

func (uc *StyleUseCase) ListStyles() []style.Info {
	return uc.styles.List()
}

func (uc *StyleUseCase) GetStyle(name, baseURL string) (StyleResult, error) {
	if name == "custom" {
		doc, err := uc.styles.LoadCustom()
		if err != nil {
			if errors.Is(err, style.ErrStyleNotFound) {
				return StyleResult{}, fmt.Errorf("style %q: %w", name, ErrNotFound)
			}
			return StyleResult{}, err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return StyleResult{}, err
		}
		return StyleResult{Data: data, NoStore: true}, nil
	}

	if data, err := uc.styles.LoadRaster(name); err == nil {
		return StyleResult{Data: data}, nil
	} else if !errors.Is(err, style.ErrStyleNotFound) {
		return StyleResult{}, err
	}

	s, err := uc.styles.LoadScraped(name)
	if err != nil {
		if errors.Is(err, style.ErrStyleNotFound) {
			return StyleResult{}, fmt.Errorf("style %q: %w", name, ErrNotFound)
		}
		return StyleResult{}, err
	}

	rebaseStyle(s, name, baseURL)

	data, err := json.Marshal(s.Doc)
	if err != nil {
		return StyleResult{}, err
	}
	return StyleResult{Data: data}, nil
}

// rebaseStyle rewrites the proxy URLs inside a scraped style to point
// at baseURL. The scraping pipeline writes relative proxy paths; the
// client needs absolute ones for the origin it actually reached.
func rebaseStyle(s style.Style, name, baseURL string) {
	if s.Meta != nil && s.Meta.OriginalSprite != "" {
		s.Doc["sprite"] = baseURL + "/api/v1/sprites/" + name
	}
	if s.Meta != nil && s.Meta.OriginalGlyphs != "" {
		s.Doc["glyphs"] = baseURL + "/api/v1/glyphs/" + name + "/{fontstack}/{range}.pbf"
	}

	sources, ok := s.Doc["sources"].(map[string]any)
	if !ok {
		return
	}
	for _, rawSource := range sources {
		source, ok := rawSource.(map[string]any)
		if !ok {
			continue
		}
		tiles, ok := source["tiles"].([]any)
		if !ok {
			continue
		}
		for i, rawTile := range tiles {
			tile, ok := rawTile.(string)
			if ok && strings.HasPrefix(tile, "/") {
				tiles[i] = baseURL + tile
			}
		}
	}
}
