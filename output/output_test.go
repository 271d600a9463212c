package output

import (
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grid = raster.Grid{Width: 3, Height: 2, OriginX: 0, OriginY: 20, PixelWidth: 10, PixelHeight: 10, CRS: "EPSG:32643"}

func changeRaster() *raster.Raster {
	return raster.FromValues(grid, []float64{-1, 0, 1, math.NaN(), 1, 0})
}

func TestParseColor(t *testing.T) {
	for _, s := range []string{"#8B4513", "8b4513", " #8b4513 "} {
		c, err := ParseColor(s)
		require.NoError(t, err)
		r, g, b := c.RGB255()
		assert.Equal(t, [3]uint8{0x8b, 0x45, 0x13}, [3]uint8{r, g, b})
	}
	white, err := ParseColor("white")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, toRGBA(white))

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)
}

func TestColorizeRamp(t *testing.T) {
	img, err := Colorize(changeRaster(), Ramp(-1, 1, "#FF0000", "white", "#0000FF"))
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(2, 0))
	assert.Equal(t, uint8(0), img.RGBAAt(0, 1).A)
}

func TestColorizeSolid(t *testing.T) {
	img, err := Colorize(changeRaster(), Solid("#FF8C00"))
	require.NoError(t, err)

	orange := color.RGBA{0xff, 0x8c, 0x00, 255}
	// Every valid pixel is painted, whatever its value.
	assert.Equal(t, orange, img.RGBAAt(0, 0))
	assert.Equal(t, orange, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 1))

	_, err = Colorize(changeRaster(), Style{Kind: StyleSolid})
	assert.Error(t, err)
}

func TestRampColorMidpoints(t *testing.T) {
	colors, err := Ramp(0, 1, "#000000", "#ffffff").colors()
	require.NoError(t, err)
	r, g, b := rampColor(colors, 0.5).RGB255()
	assert.InDelta(t, 128, int(r), 1)
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
	assert.Equal(t, 0.0, normalize(-5, 0, 1))
	assert.Equal(t, 1.0, normalize(5, 0, 1))
	assert.Equal(t, 0.0, normalize(5, 1, 1))
}

func TestCreateLayerAndMapImages(t *testing.T) {
	dir := t.TempDir()
	layerPath := filepath.Join(dir, "layers", "water_change.png")
	change, err := CreateLayerImage(changeRaster(), Ramp(-1, 1, "#FF0000", "white", "#0000FF"), layerPath)
	require.NoError(t, err)

	file, err := os.Open(layerPath)
	require.NoError(t, err)
	decoded, err := png.Decode(file)
	file.Close()
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Bounds().Dx())
	assert.Equal(t, 2, decoded.Bounds().Dy())

	outline, err := Colorize(raster.FromValues(grid, []float64{1, 1, 1, 1, math.NaN(), 1}), Outline("black", 2))
	require.NoError(t, err)

	mapPath := filepath.Join(dir, "map.png")
	require.NoError(t, CreateMapImage([]MapLayer{
		{Name: "Lake Boundary", Style: Outline("black", 2), Image: outline},
		{Name: "Water Change 2024–2025", Style: Ramp(-1, 1, "#FF0000", "white", "#0000FF"), Image: change},
	}, "Demo Lake", mapPath))

	file, err = os.Open(mapPath)
	require.NoError(t, err)
	defer file.Close()
	composite, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 600, composite.Bounds().Dx())
	// Title, 400 px of map and a two item legend.
	assert.Equal(t, 30+400+2*legendPadding+2*legendSpacing, composite.Bounds().Dy())

	assert.Error(t, CreateMapImage(nil, "", mapPath))
}

func TestCreateGeoJSON(t *testing.T) {
	lakes := geojson.NewFeatureCollection()
	lake := geojson.NewFeature(orb.Point{5, 5})
	lake.Properties["name"] = "Demo Lake"
	lakes.Append(lake)

	v := 0.0123
	report := dataset.NewReport("run-1", "emulator", []string{"encroachment"})
	report.AddMetric(dataset.Metric{Section: "encroachment", Name: "encroachment_gain", Label: "2025", Km2: &v})
	report.AddMetric(dataset.Metric{Section: "encroachment", Name: "dumping_area", Label: "2025"})

	path := filepath.Join(t.TempDir(), "lakes.geojson")
	require.NoError(t, CreateGeoJSON(lakes, grid.Bound(), report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Demo Lake", fc.Features[0].Properties["name"])
	assert.Equal(t, "lake", fc.Features[0].Properties["kind"])

	summary := fc.Features[1]
	assert.Equal(t, "run-1", summary.Properties["run_id"])
	assert.Equal(t, 0.0123, summary.Properties["encroachment.encroachment_gain.2025"])
	assert.Contains(t, summary.Properties, "encroachment.dumping_area.2025")
	assert.Nil(t, summary.Properties["encroachment.dumping_area.2025"])
	assert.Equal(t, grid.Bound(), summary.Geometry.Bound())
}
