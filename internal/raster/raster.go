// Package raster holds materialized, masked single-band rasters: the only form in
// which computed images leave the processing backend.
package raster

import "math"

type Raster struct {
	Grid
	Values []float64
	Valid  []bool
}

// New returns a fully masked raster over g.
func New(g Grid) *Raster {
	return &Raster{
		Grid:   g,
		Values: make([]float64, g.Len()),
		Valid:  make([]bool, g.Len()),
	}
}

// FromValues builds a raster where NaN marks masked pixels.
func FromValues(g Grid, values []float64) *Raster {
	r := New(g)
	for i, v := range values {
		if i >= len(r.Values) {
			break
		}
		if !math.IsNaN(v) {
			r.Values[i] = v
			r.Valid[i] = true
		}
	}
	return r
}

func (r *Raster) At(x, y int) (float64, bool) {
	i := r.Index(x, y)
	return r.Values[i], r.Valid[i]
}

func (r *Raster) Set(x, y int, v float64) {
	i := r.Index(x, y)
	r.Values[i] = v
	r.Valid[i] = true
}

func (r *Raster) ValidCount() int {
	n := 0
	for _, ok := range r.Valid {
		if ok {
			n++
		}
	}
	return n
}

// Sum adds every valid value.
func (r *Raster) Sum() float64 {
	var sum float64
	for i, ok := range r.Valid {
		if ok {
			sum += r.Values[i]
		}
	}
	return sum
}

// Equal reports whether both rasters share grid, mask and values bit for bit.
func (r *Raster) Equal(o *Raster) bool {
	if r.Grid != o.Grid || len(r.Values) != len(o.Values) {
		return false
	}
	for i := range r.Values {
		if r.Valid[i] != o.Valid[i] {
			return false
		}
		if r.Valid[i] && math.Float64bits(r.Values[i]) != math.Float64bits(o.Values[i]) {
			return false
		}
	}
	return true
}

// Resample maps r onto g by nearest neighbour. Pixels of g outside r stay masked.
func (r *Raster) Resample(g Grid) *Raster {
	if g == r.Grid {
		out := New(g)
		copy(out.Values, r.Values)
		copy(out.Valid, r.Valid)
		return out
	}
	out := New(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			sx, sy, ok := r.Locate(g.Center(x, y))
			if !ok {
				continue
			}
			if v, valid := r.At(sx, sy); valid {
				out.Set(x, y, v)
			}
		}
	}
	return out
}

// NoDataFill returns the values with masked pixels replaced by noData.
func (r *Raster) NoDataFill(noData float64) []float64 {
	data := make([]float64, len(r.Values))
	for i, v := range r.Values {
		if r.Valid[i] {
			data[i] = v
		} else {
			data[i] = noData
		}
	}
	return data
}
