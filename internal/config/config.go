// Package config holds the analysis parameters: asset ids, date windows,
// thresholds and reduction settings. Defaults reproduce the reference lake
// analysis; a YAML file may override any of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DateLayout = "2006-01-02"

const (
	SectionEncroachment = "encroachment"
	SectionWater        = "water"
	SectionVegetation   = "vegetation"
)

var AllSections = []string{SectionEncroachment, SectionWater, SectionVegetation}

var validate = validator.New()

type Assets struct {
	Lakes        string `yaml:"lakes" validate:"required"`
	Sentinel2    string `yaml:"sentinel2" validate:"required"`
	DynamicWorld string `yaml:"dynamic_world" validate:"required"`
	Buildings    string `yaml:"buildings" validate:"required"`
	Elevation    string `yaml:"elevation" validate:"required"`
}

// Period is a date window. Start is inclusive, End exclusive.
type Period struct {
	Start string `yaml:"start" validate:"required,datetime=2006-01-02"`
	End   string `yaml:"end" validate:"required,datetime=2006-01-02"`
}

func (p Period) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, p.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period start %q: %w", p.Start, err)
	}
	end, err := time.Parse(DateLayout, p.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period end %q: %w", p.End, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("period %s..%s is empty", p.Start, p.End)
	}
	return start, end, nil
}

func (p Period) String() string {
	return p.Start + ".." + p.End
}

// Comparison is the pair of windows a change is measured between.
type Comparison struct {
	Earlier Period `yaml:"earlier"`
	Later   Period `yaml:"later"`
	// Labels name the windows in layer and metric names, e.g. "2024".
	EarlierLabel string `yaml:"earlier_label" validate:"required"`
	LaterLabel   string `yaml:"later_label" validate:"required"`
}

// Composite configures one spectral index composite and its threshold.
type Composite struct {
	CloudProperty string  `yaml:"cloud_property" validate:"required"`
	CloudCeiling  float64 `yaml:"cloud_ceiling" validate:"gt=0,lte=100"`
	// The index is (First - Second) / (First + Second).
	First     string  `yaml:"first_band" validate:"required"`
	Second    string  `yaml:"second_band" validate:"required"`
	IndexName string  `yaml:"index_name" validate:"required"`
	Threshold float64 `yaml:"threshold" validate:"gte=-1,lte=1"`
	// MaskBand, when set, masks pixels where that band is not positive
	// before compositing.
	MaskBand string `yaml:"mask_band"`
}

type Landcover struct {
	Band       string  `yaml:"band" validate:"required"`
	BuiltClass float64 `yaml:"built_class" validate:"gte=0"`
	WaterClass float64 `yaml:"water_class" validate:"gte=0"`
}

type Dumping struct {
	ConfidenceProperty string  `yaml:"confidence_property" validate:"required"`
	MinConfidence      float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
	FootprintBuffer    float64 `yaml:"footprint_buffer_meters" validate:"gte=0"`
}

type Zonal struct {
	Scale     float64 `yaml:"scale" validate:"gt=0"`
	MaxPixels float64 `yaml:"max_pixels" validate:"gt=0"`
	// Parallel bounds concurrent area requests within a section.
	Parallel int `yaml:"parallel" validate:"gte=1,lte=32"`
}

type Render struct {
	Enabled      bool    `yaml:"enabled"`
	PixelSize    float64 `yaml:"pixel_size" validate:"gt=0"`
	MaxDimension int     `yaml:"max_dimension" validate:"gte=16,lte=8192"`
	Workers      int     `yaml:"workers" validate:"gte=1,lte=32"`
	GeoTIFF      bool    `yaml:"geotiff"`
	Terrain      bool    `yaml:"terrain"`
	CRS          string  `yaml:"crs"`
}

type Weather struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

type Context struct {
	Weather Weather `yaml:"weather"`
}

type Config struct {
	Assets       Assets     `yaml:"assets"`
	BufferMeters float64    `yaml:"buffer_meters" validate:"gt=0"`
	Monthly      Comparison `yaml:"monthly"`
	Vegetation   Comparison `yaml:"vegetation_years"`
	BuiltUp      Composite  `yaml:"built_up"`
	Greenness    Composite  `yaml:"greenness"`
	Landcover    Landcover  `yaml:"landcover"`
	Dumping      Dumping    `yaml:"dumping"`
	Zonal        Zonal      `yaml:"zonal"`
	Render       Render     `yaml:"render"`
	Sections     []string   `yaml:"sections" validate:"min=1,dive,oneof=encroachment water vegetation"`
	Context      Context    `yaml:"context"`
}

func Default() *Config {
	return &Config{
		Assets: Assets{
			Lakes:        "projects/waterbody-464317/assets/shapefilelakes",
			Sentinel2:    "COPERNICUS/S2_SR",
			DynamicWorld: "GOOGLE/DYNAMICWORLD/V1",
			Buildings:    "GOOGLE/Research/open-buildings/v3/polygons",
			Elevation:    "USGS/SRTMGL1_003",
		},
		BufferMeters: 1000,
		Monthly: Comparison{
			Earlier:      Period{Start: "2024-06-01", End: "2024-06-30"},
			Later:        Period{Start: "2025-06-01", End: "2025-06-30"},
			EarlierLabel: "2024",
			LaterLabel:   "2025",
		},
		Vegetation: Comparison{
			Earlier:      Period{Start: "2024-06-01", End: "2025-05-31"},
			Later:        Period{Start: "2025-06-01", End: "2026-05-31"},
			EarlierLabel: "2024–25",
			LaterLabel:   "2025–26",
		},
		BuiltUp: Composite{
			CloudProperty: "CLOUDY_PIXEL_PERCENTAGE",
			CloudCeiling:  30,
			First:         "B11",
			Second:        "B8",
			IndexName:     "NDBI",
			Threshold:     0.1,
			MaskBand:      "B8",
		},
		Greenness: Composite{
			CloudProperty: "CLOUDY_PIXEL_PERCENTAGE",
			CloudCeiling:  20,
			First:         "B8",
			Second:        "B4",
			IndexName:     "NDVI",
			Threshold:     0.3,
		},
		Landcover: Landcover{Band: "label", BuiltClass: 1, WaterClass: 0},
		Dumping: Dumping{
			ConfidenceProperty: "confidence",
			MinConfidence:      0.75,
			FootprintBuffer:    50,
		},
		Zonal: Zonal{Scale: 10, MaxPixels: 1e13, Parallel: 4},
		Render: Render{
			Enabled:      true,
			PixelSize:    10,
			MaxDimension: 1024,
			Workers:      4,
		},
		Sections: append([]string{}, AllSections...),
	}
}

// Validate checks field constraints and that every period is a real window.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	var errs []error
	for name, p := range map[string]Period{
		"monthly.earlier":          c.Monthly.Earlier,
		"monthly.later":            c.Monthly.Later,
		"vegetation_years.earlier": c.Vegetation.Earlier,
		"vegetation_years.later":   c.Vegetation.Later,
	} {
		if _, _, err := p.Range(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) HasSection(name string) bool {
	for _, s := range c.Sections {
		if s == name {
			return true
		}
	}
	return false
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read the config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse the config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefault stores the default configuration at path, creating its directory.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
