package raster

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid() Grid {
	return Grid{Width: 4, Height: 3, OriginX: 1000, OriginY: 2030, PixelWidth: 10, PixelHeight: 10, CRS: "EPSG:32643"}
}

func TestGridCenterAndLocate(t *testing.T) {
	g := testGrid()

	c := g.Center(0, 0)
	assert.Equal(t, orb.Point{1005, 2025}, c)

	x, y, ok := g.Locate(orb.Point{1031, 2001})
	require.True(t, ok)
	assert.Equal(t, 3, x)
	assert.Equal(t, 2, y)

	_, _, ok = g.Locate(orb.Point{999, 2025})
	assert.False(t, ok)
}

func TestGridBoundAndArea(t *testing.T) {
	g := testGrid()
	b := g.Bound()
	assert.Equal(t, orb.Point{1000, 2000}, b.Min)
	assert.Equal(t, orb.Point{1040, 2030}, b.Max)
	assert.Equal(t, 100.0, g.CellArea())

	back := GridFromGeoTransform(g.GeoTransform(), g.Width, g.Height, g.CRS)
	assert.Equal(t, g, back)
}

func TestGridForBoundClampsDimension(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10000, 5000}}

	g := GridForBound(b, 10, 0, "EPSG:3857")
	assert.Equal(t, 1000, g.Width)
	assert.Equal(t, 500, g.Height)

	g = GridForBound(b, 10, 250, "EPSG:3857")
	assert.Equal(t, 250, g.Width)
	assert.Equal(t, 125, g.Height)
	assert.InDelta(t, 40.0, g.PixelWidth, 1e-9)
}

func TestEPSGCode(t *testing.T) {
	code, err := testGrid().EPSGCode()
	require.NoError(t, err)
	assert.Equal(t, 32643, code)

	_, err = Grid{CRS: "WGS84"}.EPSGCode()
	assert.Error(t, err)
}

func TestFromValuesMasksNaN(t *testing.T) {
	g := Grid{Width: 2, Height: 1, PixelWidth: 1, PixelHeight: 1}
	r := FromValues(g, []float64{math.NaN(), 3})

	_, ok := r.At(0, 0)
	assert.False(t, ok)
	v, ok := r.At(1, 0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, 1, r.ValidCount())
	assert.Equal(t, 3.0, r.Sum())
	assert.Equal(t, []float64{-9999, 3}, r.NoDataFill(-9999))
}

func TestResampleNearest(t *testing.T) {
	src := FromValues(Grid{Width: 2, Height: 2, OriginX: 0, OriginY: 20, PixelWidth: 10, PixelHeight: 10},
		[]float64{1, 2, 3, math.NaN()})
	dst := src.Resample(Grid{Width: 4, Height: 4, OriginX: 0, OriginY: 20, PixelWidth: 5, PixelHeight: 5})

	v, ok := dst.At(1, 1)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	v, ok = dst.At(3, 0)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
	_, ok = dst.At(3, 3)
	assert.False(t, ok)

	same := src.Resample(src.Grid)
	assert.True(t, same.Equal(src))
}
