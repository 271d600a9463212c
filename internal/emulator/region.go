package emulator

import (
	"encoding/json"
	"math"

	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// shape is a geometry grown by buffer map units. Fixture grids are assumed to
// be in a metric projection, so buffers in metres apply directly.
type shape struct {
	geom   orb.Geometry
	buffer float64
}

type region struct {
	shapes []shape
}

func regionOf(geoms ...orb.Geometry) region {
	r := region{}
	for _, g := range geoms {
		if g != nil {
			r.shapes = append(r.shapes, shape{geom: g})
		}
	}
	return r
}

func (r region) buffered(distance float64) region {
	out := region{shapes: make([]shape, len(r.shapes))}
	for i, s := range r.shapes {
		out.shapes[i] = shape{geom: s.geom, buffer: s.buffer + distance}
	}
	return out
}

// signedDistance is negative inside the buffered shape, positive outside and
// zero on its boundary.
func (s shape) signedDistance(p orb.Point) float64 {
	d := boundaryDistance(s.geom, p)
	if geometryContains(s.geom, p) {
		d = -d
	}
	return d - s.buffer
}

func (r region) contains(p orb.Point) bool {
	for _, s := range r.shapes {
		if s.signedDistance(p) <= 0 {
			return true
		}
	}
	return false
}

// onOutline reports whether p lies within halfWidth of any shape boundary.
func (r region) onOutline(p orb.Point, halfWidth float64) bool {
	for _, s := range r.shapes {
		if math.Abs(s.signedDistance(p)) <= halfWidth {
			return true
		}
	}
	return false
}

func (r region) bound() (orb.Bound, bool) {
	var (
		b  orb.Bound
		ok bool
	)
	for _, s := range r.shapes {
		sb := s.geom.Bound().Pad(math.Max(s.buffer, 0))
		if !ok {
			b, ok = sb, true
			continue
		}
		b = b.Union(sb)
	}
	return b, ok
}

func (r region) intersects(b orb.Bound) bool {
	rb, ok := r.bound()
	return ok && rb.Intersects(b)
}

// mask flags the pixels of g whose centre falls inside the region.
func (r region) mask(g raster.Grid) []bool {
	inside := make([]bool, g.Len())
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			inside[g.Index(x, y)] = r.contains(g.Center(x, y))
		}
	}
	return inside
}

func (r region) centroid() orb.Point {
	var (
		sum      orb.Point
		weight   float64
		fallback orb.Point
		points   float64
	)
	for _, s := range r.shapes {
		switch g := s.geom.(type) {
		case orb.Point:
			fallback = orb.Point{fallback[0] + g[0], fallback[1] + g[1]}
			points++
		default:
			c, area := planar.CentroidArea(g)
			area = math.Abs(area)
			if area == 0 {
				fallback = orb.Point{fallback[0] + c[0], fallback[1] + c[1]}
				points++
				continue
			}
			sum = orb.Point{sum[0] + c[0]*area, sum[1] + c[1]*area}
			weight += area
		}
	}
	if weight > 0 {
		return orb.Point{sum[0] / weight, sum[1] / weight}
	}
	if points > 0 {
		return orb.Point{fallback[0] / points, fallback[1] / points}
	}
	return orb.Point{}
}

// geometry renders the region as plain geometry. Buffered shapes are
// approximated by their padded bounds.
func (r region) geometry() orb.Geometry {
	geoms := make([]orb.Geometry, 0, len(r.shapes))
	for _, s := range r.shapes {
		if s.buffer != 0 {
			geoms = append(geoms, s.geom.Bound().Pad(s.buffer).ToPolygon())
			continue
		}
		geoms = append(geoms, s.geom)
	}
	if len(geoms) == 1 {
		return geoms[0]
	}
	return orb.Collection(geoms)
}

func geometryJSON(g orb.Geometry) (map[string]any, error) {
	raw, err := json.Marshal(geojson.NewGeometry(g))
	if err != nil {
		return nil, err
	}
	var out map[string]any
	err = json.Unmarshal(raw, &out)
	return out, err
}

func geometryContains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Ring:
		return planar.RingContains(g, p)
	case orb.Bound:
		return g.Contains(p)
	case orb.Collection:
		for _, c := range g {
			if geometryContains(c, p) {
				return true
			}
		}
	}
	return false
}

// boundaryDistance is the distance from p to the closest edge or vertex of g.
func boundaryDistance(g orb.Geometry, p orb.Point) float64 {
	switch g := g.(type) {
	case orb.Point:
		return planar.Distance(g, p)
	case orb.MultiPoint:
		best := math.Inf(1)
		for _, pt := range g {
			best = math.Min(best, planar.Distance(pt, p))
		}
		return best
	case orb.LineString:
		return lineDistance(g, p)
	case orb.MultiLineString:
		best := math.Inf(1)
		for _, ls := range g {
			best = math.Min(best, lineDistance(ls, p))
		}
		return best
	case orb.Ring:
		return lineDistance(orb.LineString(g), p)
	case orb.Polygon:
		best := math.Inf(1)
		for _, ring := range g {
			best = math.Min(best, lineDistance(orb.LineString(ring), p))
		}
		return best
	case orb.MultiPolygon:
		best := math.Inf(1)
		for _, poly := range g {
			best = math.Min(best, boundaryDistance(poly, p))
		}
		return best
	case orb.Bound:
		return boundaryDistance(g.ToPolygon(), p)
	case orb.Collection:
		best := math.Inf(1)
		for _, c := range g {
			best = math.Min(best, boundaryDistance(c, p))
		}
		return best
	}
	return math.Inf(1)
}

func lineDistance(ls orb.LineString, p orb.Point) float64 {
	switch len(ls) {
	case 0:
		return math.Inf(1)
	case 1:
		return planar.Distance(ls[0], p)
	}
	best := math.Inf(1)
	for i := 1; i < len(ls); i++ {
		best = math.Min(best, planar.DistanceFromSegment(ls[i-1], ls[i], p))
	}
	return best
}
