package emulator

import (
	"math"
	"time"

	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DemoAssets names the catalogue entries the demo fixtures are published under.
type DemoAssets struct {
	Lakes        string
	Sentinel2    string
	DynamicWorld string
	Buildings    string
	Elevation    string
}

// DemoGrid is a 1.2 km square of 10 m pixels in UTM zone 43N.
var DemoGrid = raster.Grid{
	Width:       120,
	Height:      120,
	OriginX:     500000,
	OriginY:     1400000,
	PixelWidth:  10,
	PixelHeight: 10,
	CRS:         "EPSG:32643",
}

var (
	demoLakeCenter = orb.Point{500600, 1399400}
	demoLakeRadius = 250.0
)

type landCover int

const (
	coverBare landCover = iota
	coverWater
	coverVegetation
	coverBuilt
)

// demoCover lays out a lake that shrinks between 2024 and 2025 and greens
// over on the exposed bed, a built-up block that spreads onto the eastern
// shore, and woodland in the west that recedes. year2025 selects the later state.
func demoCover(p orb.Point, year2025 bool) landCover {
	dx, dy := p[0]-demoLakeCenter[0], p[1]-demoLakeCenter[1]
	dist := math.Hypot(dx, dy)
	radius := demoLakeRadius
	if year2025 {
		radius = 220
	}
	switch {
	case dist < radius:
		return coverWater
	case year2025 && dist < demoLakeRadius:
		return coverVegetation
	case p[0] > 501000 && p[1] > 1399700:
		return coverBuilt
	case year2025 && p[0] >= 500880 && p[0] < 501000 && p[1] >= 1399300 && p[1] < 1399500:
		return coverBuilt
	case p[0] < 500300 && !year2025:
		return coverVegetation
	case p[0] < 500200:
		return coverVegetation
	}
	return coverBare
}

// reflectance returns B4, B8 and B11 surface reflectance for a cover class.
func reflectance(c landCover) (float64, float64, float64) {
	switch c {
	case coverWater:
		return 300, 200, 100
	case coverVegetation:
		return 500, 3000, 1500
	case coverBuilt:
		return 1500, 2000, 3000
	}
	return 1600, 1800, 2000
}

func demoRaster(fn func(p orb.Point) float64) *raster.Raster {
	values := make([]float64, DemoGrid.Len())
	for y := 0; y < DemoGrid.Height; y++ {
		for x := 0; x < DemoGrid.Width; x++ {
			values[DemoGrid.Index(x, y)] = fn(DemoGrid.Center(x, y))
		}
	}
	return raster.FromValues(DemoGrid, values)
}

func s2Scene(id string, start time.Time, cloud float64, year2025 bool) Scene {
	layer := func(i int) *raster.Raster {
		return demoRaster(func(p orb.Point) float64 {
			b4, b8, b11 := reflectance(demoCover(p, year2025))
			if cloud > 40 {
				return 6000
			}
			return [3]float64{b4, b8, b11}[i]
		})
	}
	scene := Scene{
		ID:         id,
		Start:      start,
		Properties: map[string]any{"CLOUDY_PIXEL_PERCENTAGE": cloud},
		Bands:      map[string]*raster.Raster{"B4": layer(0), "B8": layer(1), "B11": layer(2)},
	}
	// A no-data pixel in the top left corner.
	scene.Bands["B8"].Values[0] = 0
	return scene
}

func dwScene(id string, start time.Time, year2025 bool) Scene {
	label := demoRaster(func(p orb.Point) float64 {
		switch demoCover(p, year2025) {
		case coverWater:
			return 0
		case coverBuilt:
			return 1
		}
		return 2
	})
	return Scene{ID: id, Start: start, Bands: map[string]*raster.Raster{"label": label}}
}

func square(center orb.Point, half float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{center[0] - half, center[1] - half},
		{center[0] + half, center[1] - half},
		{center[0] + half, center[1] + half},
		{center[0] - half, center[1] + half},
		{center[0] - half, center[1] - half},
	}}
}

func circle(center orb.Point, radius float64, segments int) orb.Polygon {
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{center[0] + radius*math.Cos(angle), center[1] + radius*math.Sin(angle)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

func acquired(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 5, 30, 0, 0, time.UTC)
}

// Demo builds a small synthetic catalogue covering every asset the analysis
// reads, with scenes for June 2024, June 2025 and both vegetation years.
func Demo(assets DemoAssets) *Fixtures {
	fx := NewFixtures(DemoGrid)

	lake := geojson.NewFeature(circle(demoLakeCenter, demoLakeRadius, 48))
	lake.Properties["name"] = "Demo Lake"
	lakes := geojson.NewFeatureCollection()
	lakes.Append(lake)
	fx.Tables[assets.Lakes] = lakes

	buildings := geojson.NewFeatureCollection()
	for _, b := range []struct {
		center     orb.Point
		confidence float64
	}{
		{orb.Point{501100, 1399800}, 0.91},
		{orb.Point{500940, 1399400}, 0.82},
		{orb.Point{500300, 1399000}, 0.64},
	} {
		f := geojson.NewFeature(square(b.center, 10))
		f.Properties["confidence"] = b.confidence
		buildings.Append(f)
	}
	fx.Tables[assets.Buildings] = buildings

	fx.Collections[assets.Sentinel2] = Collection{
		BandNames: []string{"B4", "B8", "B11"},
		Scenes: []Scene{
			s2Scene("20240608_T43PGQ", acquired(2024, 6, 8), 12, false),
			s2Scene("20240618_T43PGQ", acquired(2024, 6, 18), 55, false),
			s2Scene("20240923_T43PGQ", acquired(2024, 9, 23), 8, false),
			s2Scene("20250115_T43PGQ", acquired(2025, 1, 15), 4, false),
			s2Scene("20250603_T43PGQ", acquired(2025, 6, 3), 18, true),
			s2Scene("20250623_T43PGQ", acquired(2025, 6, 23), 25, true),
			s2Scene("20251002_T43PGQ", acquired(2025, 10, 2), 11, true),
			s2Scene("20260210_T43PGQ", acquired(2026, 2, 10), 3, true),
		},
	}

	fx.Collections[assets.DynamicWorld] = Collection{
		BandNames: []string{"label"},
		Scenes: []Scene{
			dwScene("20240608_T43PGQ", acquired(2024, 6, 8), false),
			dwScene("20240618_T43PGQ", acquired(2024, 6, 18), false),
			dwScene("20250603_T43PGQ", acquired(2025, 6, 3), true),
			dwScene("20250623_T43PGQ", acquired(2025, 6, 23), true),
		},
	}

	fx.Images[assets.Elevation] = Image{Bands: []Band{{
		Name: "elevation",
		Raster: demoRaster(func(p orb.Point) float64 {
			return 880 + math.Hypot(p[0]-demoLakeCenter[0], p[1]-demoLakeCenter[1])/40
		}),
	}}}
	return fx
}
