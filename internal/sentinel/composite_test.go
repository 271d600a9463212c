package sentinel

import (
	"context"
	"testing"
	"time"

	"github.com/forest-guardian/lakewatch/internal/config"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/emulator"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(t *testing.T, period config.Period) Request {
	t.Helper()
	req, err := NewRequest("COPERNICUS/S2_SR", ee.LoadFeatureCollection("buffer").Geometry(), period)
	require.NoError(t, err)
	return req
}

func june2025() config.Period {
	return config.Period{Start: "2025-06-01", End: "2025-06-30"}
}

func TestCompositeRequestsOneFilteredCollection(t *testing.T) {
	cfg := config.Default()
	for _, tc := range []struct {
		name    string
		image   ee.Image
		ceiling float64
		maps    int
	}{
		{"built-up", BuiltUpComposite(request(t, june2025()), cfg.BuiltUp), 30, 1},
		{"vegetation", VegetationComposite(request(t, june2025()), cfg.Greenness), 20, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			loads := ee.FindInvocations(tc.image, "ImageCollection.load")
			require.Len(t, loads, 1)
			assert.Equal(t, "COPERNICUS/S2_SR", loads[0].Arg("id").Constant)

			bounds := ee.FindInvocations(tc.image, "Filter.intersects")
			require.Len(t, bounds, 1)

			clouds := ee.FindInvocations(tc.image, "Filter.lessThan")
			require.Len(t, clouds, 1)
			assert.Equal(t, "CLOUDY_PIXEL_PERCENTAGE", clouds[0].Arg("leftField").Constant)
			assert.Equal(t, tc.ceiling, clouds[0].Arg("rightValue").Constant)

			dates := ee.FindInvocations(tc.image, "Date")
			require.Len(t, dates, 2)
			assert.ElementsMatch(t, []any{
				time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
				time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC).UnixMilli(),
			}, []any{dates[0].Arg("value").Constant, dates[1].Arg("value").Constant})

			assert.Len(t, ee.FindInvocations(tc.image, "Collection.map"), tc.maps)
		})
	}
}

func testGrid() raster.Grid {
	return raster.Grid{Width: 3, Height: 1, OriginX: 0, OriginY: 10, PixelWidth: 10, PixelHeight: 10, CRS: "EPSG:32643"}
}

func backendWith(t *testing.T, scenes ...emulator.Scene) *emulator.Backend {
	t.Helper()
	fx := emulator.NewFixtures(testGrid())
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(testGrid().Bound().ToPolygon()))
	fx.Tables["buffer"] = fc
	fx.Collections["COPERNICUS/S2_SR"] = emulator.Collection{BandNames: []string{"B4", "B8", "B11"}, Scenes: scenes}
	logger, _ := test.NewNullLogger()
	b, err := emulator.New(fx, logger)
	require.NoError(t, err)
	return b
}

func scene(day int, cloud float64, b4, b8, b11 []float64) emulator.Scene {
	return emulator.Scene{
		ID:         "s",
		Start:      time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		Properties: map[string]any{"CLOUDY_PIXEL_PERCENTAGE": cloud},
		Bands: map[string]*raster.Raster{
			"B4":  raster.FromValues(testGrid(), b4),
			"B8":  raster.FromValues(testGrid(), b8),
			"B11": raster.FromValues(testGrid(), b11),
		},
	}
}

func TestMasksUseStrictThresholds(t *testing.T) {
	// Pixel 0 sits exactly on the NDBI threshold, pixel 1 exactly on the NDVI one.
	b4 := []float64{9, 7, 1}
	b8 := []float64{9, 13, 9}
	b11 := []float64{11, 20, 1}
	backend := backendWith(t, scene(10, 5, b4, b8, b11))
	cfg := config.Default()
	ctx := context.Background()

	ndbi, err := backend.ComputePixels(ctx, BuiltUpComposite(request(t, june2025()), cfg.BuiltUp).Select("NDBI"), testGrid())
	require.NoError(t, err)
	require.Equal(t, 0.1, ndbi.Values[0])

	ndbiMask, err := backend.ComputePixels(ctx, BuiltUpMask(BuiltUpComposite(request(t, june2025()), cfg.BuiltUp), cfg.BuiltUp), testGrid())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, ndbiMask.Values)

	ndvi, err := backend.ComputePixels(ctx, VegetationComposite(request(t, june2025()), cfg.Greenness).Select("NDVI"), testGrid())
	require.NoError(t, err)
	require.Equal(t, 0.3, ndvi.Values[1])

	vegMask, err := backend.ComputePixels(ctx, VegetationMask(VegetationComposite(request(t, june2025()), cfg.Greenness), cfg.Greenness), testGrid())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, vegMask.Values)
}

func TestBuiltUpMasksNonPositivePixels(t *testing.T) {
	backend := backendWith(t,
		scene(5, 10, []float64{1, 1, 1}, []float64{0, 2, 2}, []float64{4, 4, 4}),
		scene(6, 10, []float64{1, 1, 1}, []float64{2, 2, 2}, []float64{6, 6, 6}),
	)
	cfg := config.Default()

	b11, err := backend.ComputePixels(context.Background(),
		BuiltUpComposite(request(t, june2025()), cfg.BuiltUp).Select("B11"), testGrid())
	require.NoError(t, err)
	// The first pixel of the first scene is dropped before the median.
	assert.Equal(t, []float64{6, 5, 5}, b11.Values)
}

func TestEmptyWindowGivesEmptyMask(t *testing.T) {
	backend := backendWith(t, scene(10, 55, []float64{1, 1, 1}, []float64{2, 2, 2}, []float64{6, 6, 6}))
	cfg := config.Default()

	mask, err := backend.ComputePixels(context.Background(),
		BuiltUpMask(BuiltUpComposite(request(t, june2025()), cfg.BuiltUp), cfg.BuiltUp), testGrid())
	require.NoError(t, err)
	assert.Zero(t, mask.ValidCount())
}

func TestCompositeIsReproducible(t *testing.T) {
	cfg := config.Default()
	first, err := ee.Digest(BuiltUpMask(BuiltUpComposite(request(t, june2025()), cfg.BuiltUp), cfg.BuiltUp))
	require.NoError(t, err)
	second, err := ee.Digest(BuiltUpMask(BuiltUpComposite(request(t, june2025()), cfg.BuiltUp), cfg.BuiltUp))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	veg, err := ee.Digest(VegetationMask(VegetationComposite(request(t, june2025()), cfg.Greenness), cfg.Greenness))
	require.NoError(t, err)
	assert.NotEqual(t, first, veg)
}
