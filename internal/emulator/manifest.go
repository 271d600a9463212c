package emulator

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the catalogue description LoadFixtures looks for.
const ManifestFile = "manifest.yaml"

type manifest struct {
	Grid        raster.Grid                   `yaml:"grid"`
	Images      map[string]imageManifest      `yaml:"images"`
	Collections map[string]collectionManifest `yaml:"collections"`
	Tables      map[string]string             `yaml:"tables"`
}

// bandManifest takes its pixels from exactly one of File, Values or Fill.
// NaN (".nan" in YAML) marks masked pixels.
type bandManifest struct {
	Name   string    `yaml:"name"`
	File   string    `yaml:"file"`
	Values []float64 `yaml:"values"`
	Fill   *float64  `yaml:"fill"`
}

type imageManifest struct {
	Bands      []bandManifest `yaml:"bands"`
	Properties map[string]any `yaml:"properties"`
}

type sceneManifest struct {
	ID         string         `yaml:"id"`
	Start      string         `yaml:"start"`
	Properties map[string]any `yaml:"properties"`
	Bands      []bandManifest `yaml:"bands"`
}

type collectionManifest struct {
	Bands  []string        `yaml:"bands"`
	Scenes []sceneManifest `yaml:"scenes"`
}

// LoadFixtures reads dir/manifest.yaml and every file it references.
func LoadFixtures(dir string) (*Fixtures, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse fixture manifest: %w", err)
	}
	if err := m.Grid.Validate(); err != nil {
		return nil, fmt.Errorf("fixture grid: %w", err)
	}

	fx := NewFixtures(m.Grid)
	for id, im := range m.Images {
		img := Image{Properties: im.Properties}
		for _, bm := range im.Bands {
			r, err := loadBand(dir, m.Grid, bm)
			if err != nil {
				return nil, fmt.Errorf("image %s: %w", id, err)
			}
			img.Bands = append(img.Bands, Band{Name: bm.Name, Raster: r})
		}
		fx.Images[id] = img
	}

	for id, cm := range m.Collections {
		c := Collection{BandNames: cm.Bands}
		for _, sm := range cm.Scenes {
			start, err := parseStart(sm.Start)
			if err != nil {
				return nil, fmt.Errorf("collection %s scene %s: %w", id, sm.ID, err)
			}
			scene := Scene{ID: sm.ID, Start: start, Properties: sm.Properties, Bands: map[string]*raster.Raster{}}
			for _, bm := range sm.Bands {
				r, err := loadBand(dir, m.Grid, bm)
				if err != nil {
					return nil, fmt.Errorf("collection %s scene %s: %w", id, sm.ID, err)
				}
				scene.Bands[bm.Name] = r
			}
			c.Scenes = append(c.Scenes, scene)
		}
		fx.Collections[id] = c
	}

	for id, file := range m.Tables {
		raw, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", id, err)
		}
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", id, err)
		}
		fx.Tables[id] = fc
	}
	return fx, fx.Validate()
}

func parseStart(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

func loadBand(dir string, g raster.Grid, bm bandManifest) (*raster.Raster, error) {
	switch {
	case bm.File != "":
		r, err := raster.ReadGeoTIFF(filepath.Join(dir, bm.File), g.CRS, math.NaN())
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", bm.Name, err)
		}
		return r.Resample(g), nil
	case bm.Values != nil:
		if len(bm.Values) != g.Len() {
			return nil, fmt.Errorf("band %s: %d values for a %dx%d grid", bm.Name, len(bm.Values), g.Width, g.Height)
		}
		return raster.FromValues(g, bm.Values), nil
	case bm.Fill != nil:
		values := make([]float64, g.Len())
		for i := range values {
			values[i] = *bm.Fill
		}
		return raster.FromValues(g, values), nil
	}
	return nil, fmt.Errorf("band %s has no file, values or fill", bm.Name)
}
