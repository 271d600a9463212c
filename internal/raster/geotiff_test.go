package raster

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoTIFFRoundTrip(t *testing.T) {
	want := FromValues(testGrid(), []float64{
		1, 0, -1, math.NaN(),
		0.25, 0.5, 0.75, 1,
		math.NaN(), math.NaN(), 3, 4,
	})
	path := filepath.Join(t.TempDir(), "change.tif")
	require.NoError(t, WriteGeoTIFF(path, want, -9999))

	got, err := ReadGeoTIFF(path, want.CRS, 0)
	require.NoError(t, err)
	assert.Equal(t, want.Grid, got.Grid)
	assert.True(t, want.Equal(got))
}

func TestReadGeoTIFFMissingFile(t *testing.T) {
	_, err := ReadGeoTIFF(filepath.Join(t.TempDir(), "missing.tif"), WGS84, 0)
	assert.Error(t, err)
}

func TestToLonLat(t *testing.T) {
	lon, lat, err := ToLonLat(WGS84, 77.5, 12.9)
	require.NoError(t, err)
	assert.Equal(t, 77.5, lon)
	assert.Equal(t, 12.9, lat)

	// The central meridian of UTM zone 43N is 75°E.
	lon, lat, err = ToLonLat("EPSG:32643", 500000, 0)
	require.NoError(t, err)
	assert.InDelta(t, 75, lon, 1e-6)
	assert.InDelta(t, 0, lat, 1e-6)

	_, _, err = ToLonLat("local", 0, 0)
	assert.Error(t, err)
}

func TestTransformBound(t *testing.T) {
	b := orb.Bound{Min: orb.Point{74.99, 0.01}, Max: orb.Point{75.01, 0.03}}
	same, err := TransformBound(WGS84, "epsg:4326", b)
	require.NoError(t, err)
	assert.Equal(t, b, same)

	utm, err := TransformBound(WGS84, "EPSG:32643", b)
	require.NoError(t, err)
	assert.InDelta(t, 500000, (utm.Min[0]+utm.Max[0])/2, 1)
	assert.InDelta(t, 2226, utm.Max[0]-utm.Min[0], 10)
	assert.InDelta(t, 2212, utm.Max[1]-utm.Min[1], 10)
	assert.Greater(t, utm.Min[1], 1000.0)

	_, err = TransformBound("local", WGS84, b)
	assert.Error(t, err)
}
