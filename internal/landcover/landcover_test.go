package landcover

import (
	"context"
	"testing"
	"time"

	"github.com/forest-guardian/lakewatch/internal/config"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/emulator"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/forest-guardian/lakewatch/internal/sentinel"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grid = raster.Grid{Width: 4, Height: 1, OriginX: 0, OriginY: 10, PixelWidth: 10, PixelHeight: 10, CRS: "EPSG:32643"}

func labelScene(day int, labels ...float64) emulator.Scene {
	return emulator.Scene{
		ID:    "dw",
		Start: time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		Bands: map[string]*raster.Raster{"label": raster.FromValues(grid, labels)},
	}
}

func setup(t *testing.T) (*emulator.Backend, sentinel.Request) {
	t.Helper()
	fx := emulator.NewFixtures(grid)
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(grid.Bound().ToPolygon()))
	fx.Tables["buffer"] = fc
	fx.Collections["GOOGLE/DYNAMICWORLD/V1"] = emulator.Collection{
		BandNames: []string{"label"},
		Scenes: []emulator.Scene{
			labelScene(3, 0, 1, 6, 2),
			labelScene(9, 0, 1, 1, 2),
			labelScene(20, 1, 6, 6, 0),
			labelScene(30, 1, 1, 1, 1),
		},
	}
	logger, _ := test.NewNullLogger()
	b, err := emulator.New(fx, logger)
	require.NoError(t, err)

	req, err := sentinel.NewRequest("GOOGLE/DYNAMICWORLD/V1", ee.LoadFeatureCollection("buffer").Geometry(),
		config.Period{Start: "2024-06-01", End: "2024-06-30"})
	require.NoError(t, err)
	return b, req
}

func TestLabelsTakeTheModeOverTheWindow(t *testing.T) {
	backend, req := setup(t)
	params := config.Default().Landcover

	labels, err := backend.ComputePixels(context.Background(), Labels(req, params), grid)
	require.NoError(t, err)
	// The scene on June 30 is outside the window; ties go to the smaller label.
	assert.Equal(t, []float64{0, 1, 6, 2}, labels.Values)
}

func TestMasksAreClassEquality(t *testing.T) {
	backend, req := setup(t)
	params := config.Default().Landcover
	ctx := context.Background()
	labels := Labels(req, params)

	built, err := backend.ComputePixels(ctx, BuiltMask(labels, params), grid)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 0}, built.Values)

	water, err := backend.ComputePixels(ctx, WaterMask(labels, params), grid)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 0}, water.Values)
}

func TestLabelsGraph(t *testing.T) {
	_, req := setup(t)
	labels := Labels(req, config.Default().Landcover)

	require.Len(t, ee.FindInvocations(labels, "reduce.mode"), 1)
	selects := ee.FindInvocations(labels, "Image.select")
	require.Len(t, selects, 1)
	assert.Equal(t, []string{"label"}, selects[0].Arg("bandSelectors").Constant)
	assert.Len(t, ee.FindInvocations(labels, "Filter.lessThan"), 0)
}
