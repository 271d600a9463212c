package raster

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/lakewatch/internal/utils"
	"github.com/paulmach/orb"
)

const WGS84 = "EPSG:4326"

// ToLonLat reprojects a point from crs to WGS84.
func ToLonLat(crs string, x, y float64) (float64, float64, error) {
	xs, ys := []float64{x}, []float64{y}
	if err := Reproject(crs, WGS84, xs, ys); err != nil {
		return 0, 0, err
	}
	return xs[0], ys[0], nil
}

// TransformBound reprojects b from one crs to another. The result covers the
// corners and edge midpoints of b, so curved edges stay inside it.
func TransformBound(from, to string, b orb.Bound) (orb.Bound, error) {
	midX, midY := (b.Min[0]+b.Max[0])/2, (b.Min[1]+b.Max[1])/2
	xs := []float64{b.Min[0], midX, b.Max[0], b.Max[0], b.Max[0], midX, b.Min[0], b.Min[0]}
	ys := []float64{b.Min[1], b.Min[1], b.Min[1], midY, b.Max[1], b.Max[1], b.Max[1], midY}
	if err := Reproject(from, to, xs, ys); err != nil {
		return orb.Bound{}, err
	}
	out := orb.Bound{Min: orb.Point{xs[0], ys[0]}, Max: orb.Point{xs[0], ys[0]}}
	for i := range xs {
		out = out.Extend(orb.Point{xs[i], ys[i]})
	}
	return out, nil
}

// Reproject transforms the coordinates in place, x being easting or longitude.
func Reproject(from, to string, xs, ys []float64) error {
	src, err := Grid{CRS: from}.EPSGCode()
	if err != nil {
		return err
	}
	dst, err := Grid{CRS: to}.EPSGCode()
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}

	utils.ExecuteWithMutex(func() {
		err = reproject(src, dst, xs, ys)
	})
	return err
}

func reproject(src, dst int, xs, ys []float64) error {
	registerDrivers.Do(godal.RegisterAll)
	srcSR, err := godal.NewSpatialRefFromEPSG(src)
	if err != nil {
		return fmt.Errorf("failed to build spatial ref for EPSG:%d: %w", src, err)
	}
	defer srcSR.Close()
	dstSR, err := godal.NewSpatialRefFromEPSG(dst)
	if err != nil {
		return fmt.Errorf("failed to build spatial ref for EPSG:%d: %w", dst, err)
	}
	defer dstSR.Close()
	tr, err := godal.NewTransform(srcSR, dstSR)
	if err != nil {
		return fmt.Errorf("failed to build transform: %w", err)
	}
	defer tr.Close()

	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return fmt.Errorf("transform error: %w", err)
	}
	return nil
}
