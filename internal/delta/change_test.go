package delta

import (
	"context"
	"math"
	"testing"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/emulator"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grid = raster.Grid{Width: 5, Height: 1, OriginX: 0, OriginY: 10, PixelWidth: 10, PixelHeight: 10, CRS: "EPSG:32643"}

func compute(t *testing.T, img ee.Image) *raster.Raster {
	t.Helper()
	nan := math.NaN()
	fx := emulator.NewFixtures(grid)
	for id, values := range map[string][]float64{
		"earlier": {0, 1, 1, 0, nan},
		"later":   {1, 1, 0, 0, 1},
	} {
		fx.Images[id] = emulator.Image{Bands: []emulator.Band{{Name: "mask", Raster: raster.FromValues(grid, values)}}}
	}
	logger, _ := test.NewNullLogger()
	b, err := emulator.New(fx, logger)
	require.NoError(t, err)

	r, err := b.ComputePixels(context.Background(), img, grid)
	require.NoError(t, err)
	return r
}

func TestChange(t *testing.T) {
	earlier, later := ee.LoadImage("earlier"), ee.LoadImage("later")
	change := Change(later, earlier)

	for _, tc := range []struct {
		name  string
		image ee.Image
		want  []float64
	}{
		{"change", change, []float64{1, 0, -1, 0, 0}},
		{"gain", Gain(change), []float64{1, 0, 0, 0, 0}},
		{"loss", Loss(change), []float64{0, 0, 1, 0, 0}},
		{"encroachment", Encroachment(later, change), []float64{1, 0, 0, 0, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := compute(t, tc.image)
			assert.Equal(t, []bool{true, true, true, true, false}, r.Valid)
			assert.Equal(t, tc.want, r.Values)
		})
	}
}

func TestChangeIsDeterministic(t *testing.T) {
	a, err := ee.Digest(Change(ee.LoadImage("later"), ee.LoadImage("earlier")))
	require.NoError(t, err)
	b, err := ee.Digest(Change(ee.LoadImage("later"), ee.LoadImage("earlier")))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
