package emulator

import (
	"fmt"
	"time"

	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/paulmach/orb/geojson"
)

// Fixtures is the whole catalogue the emulator can serve. Every raster is on Grid.
type Fixtures struct {
	Grid        raster.Grid
	Images      map[string]Image
	Collections map[string]Collection
	Tables      map[string]*geojson.FeatureCollection
}

type Band struct {
	Name   string
	Raster *raster.Raster
}

type Image struct {
	Bands      []Band
	Properties map[string]any
}

type Scene struct {
	ID         string
	Start      time.Time
	Properties map[string]any
	// Bands missing from the scene are fully masked.
	Bands map[string]*raster.Raster
}

type Collection struct {
	BandNames []string
	Scenes    []Scene
}

func NewFixtures(grid raster.Grid) *Fixtures {
	return &Fixtures{
		Grid:        grid,
		Images:      map[string]Image{},
		Collections: map[string]Collection{},
		Tables:      map[string]*geojson.FeatureCollection{},
	}
}

// Validate checks that every raster sits on the fixture grid.
func (fx *Fixtures) Validate() error {
	if err := fx.Grid.Validate(); err != nil {
		return fmt.Errorf("fixture grid: %w", err)
	}
	for id, img := range fx.Images {
		for _, b := range img.Bands {
			if b.Raster == nil || b.Raster.Grid != fx.Grid {
				return fmt.Errorf("image %s band %s is not on the fixture grid", id, b.Name)
			}
		}
	}
	for id, c := range fx.Collections {
		for _, s := range c.Scenes {
			for name, r := range s.Bands {
				if r == nil || r.Grid != fx.Grid {
					return fmt.Errorf("collection %s scene %s band %s is not on the fixture grid", id, s.ID, name)
				}
			}
		}
	}
	return nil
}
