package style

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Repository reads style documents from the styles directory laid out
// by the scraping pipeline:
//
//	{dir}/scraped/{name}.json  transformed vendor styles with _meta
//	{dir}/raster/{name}.json   hand-written raster styles
//	{dir}/custom.json          the user's editable style
type Repository struct {
	dir      string
	validate *validator.Validate
}

func NewRepository(dir string, v *validator.Validate) *Repository {
	return &Repository{
		dir:      dir,
		validate: v,
	}
}

// LoadScraped loads a scraped style and its validated _meta descriptor.
func (r *Repository) LoadScraped(name string) (Style, error) {
	path := filepath.Join(r.dir, "scraped", name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Style{}, ErrStyleNotFound
		}
		return Style{}, &InvalidDescriptorError{Style: name, Err: err}
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Style{}, &InvalidDescriptorError{Style: name, Err: err}
	}

	s := Style{Doc: doc}

	rawMeta, ok := doc["_meta"]
	if !ok {
		return s, nil
	}

	metaJSON, err := json.Marshal(rawMeta)
	if err != nil {
		return Style{}, &InvalidDescriptorError{Style: name, Err: err}
	}

	var meta Meta
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return Style{}, &InvalidDescriptorError{Style: name, Err: err}
	}
	if err := r.validate.Struct(meta); err != nil {
		return Style{}, &InvalidDescriptorError{Style: name, Err: err}
	}

	s.Meta = &meta
	return s, nil
}

// LoadRaster returns the raw bytes of a raster style document.
func (r *Repository) LoadRaster(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, "raster", name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrStyleNotFound
		}
		return nil, err
	}
	return data, nil
}

// LoadCustom loads the user's editable style.
func (r *Repository) LoadCustom() (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, "custom.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrStyleNotFound
		}
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &InvalidDescriptorError{Style: "custom", Err: err}
	}
	return doc, nil
}

// List enumerates every locally available style.
func (r *Repository) List() []Info {
	var styles []Info

	styles = append(styles, r.listDir("scraped", "scraped", "transformed")...)
	styles = append(styles, r.listDir("raster", "raster", "raster")...)

	if _, err := os.Stat(filepath.Join(r.dir, "custom.json")); err == nil {
		styles = append(styles, Info{Name: "custom", Source: "local", Type: "editable"})
	}

	return styles
}

func (r *Repository) listDir(subdir, source, typ string) []Info {
	entries, err := os.ReadDir(filepath.Join(r.dir, subdir))
	if err != nil {
		return nil
	}

	var styles []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		styles = append(styles, Info{
			Name:   strings.TrimSuffix(entry.Name(), ".json"),
			Source: source,
			Type:   typ,
		})
	}
	return styles
}
