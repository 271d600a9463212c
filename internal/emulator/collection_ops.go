package emulator

import (
	"fmt"
	"maps"
	"sort"
	"time"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/raster"
)

func loadImageCollection(e *evaluator, a args) (any, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	fixture, ok := e.fx.Collections[id]
	if !ok {
		return nil, fmt.Errorf("%w: image collection %s", ee.ErrAssetNotFound, id)
	}
	c := &imageCollection{bands: fixture.BandNames}
	for _, scene := range fixture.Scenes {
		props := maps.Clone(scene.Properties)
		if props == nil {
			props = map[string]any{}
		}
		props["system:index"] = scene.ID
		props[ee.PropertyTimeStart] = float64(scene.Start.UnixMilli())

		img := &image{start: scene.Start, props: props}
		for _, name := range fixture.BandNames {
			r, ok := scene.Bands[name]
			if !ok {
				r = raster.New(e.fx.Grid)
			}
			img.bands = append(img.bands, band{name: name, r: r})
		}
		c.images = append(c.images, img)
	}
	return c, nil
}

func loadFeatureCollection(e *evaluator, a args) (any, error) {
	id, err := a.str("tableId")
	if err != nil {
		return nil, err
	}
	table, ok := e.fx.Tables[id]
	if !ok || table == nil {
		return nil, fmt.Errorf("%w: table %s", ee.ErrAssetNotFound, id)
	}
	fc := &featureCollection{}
	for _, f := range table.Features {
		fc.features = append(fc.features, &feature{
			region: regionOf(f.Geometry),
			props:  maps.Clone(map[string]any(f.Properties)),
		})
	}
	return fc, nil
}

func filterCollection(_ *evaluator, a args) (any, error) {
	keep, err := a.filter("filter")
	if err != nil {
		return nil, err
	}
	switch c := a["collection"].(type) {
	case *imageCollection:
		out := &imageCollection{bands: c.bands}
		for _, img := range c.images {
			if keep(img) {
				out.images = append(out.images, img)
			}
		}
		return out, nil
	case *featureCollection:
		out := &featureCollection{}
		for _, f := range c.features {
			if keep(f) {
				out.features = append(out.features, f)
			}
		}
		return out, nil
	}
	return nil, a.wrongType("collection", "a collection")
}

// mapCollection applies the function to every element. Image collections also
// run it once over a fully masked prototype so that the output bands are known
// when the collection is empty.
func mapCollection(e *evaluator, a args) (any, error) {
	fn, err := a.closure("baseAlgorithm")
	if err != nil {
		return nil, err
	}
	switch c := a["collection"].(type) {
	case *imageCollection:
		prototype := &image{props: map[string]any{}}
		for _, name := range c.bands {
			prototype.bands = append(prototype.bands, band{name: name, r: raster.New(e.fx.Grid)})
		}
		shape, err := e.callImage(fn, prototype)
		if err != nil {
			return nil, err
		}
		out := &imageCollection{bands: shape.names()}
		for _, img := range c.images {
			mapped, err := e.callImage(fn, img)
			if err != nil {
				return nil, err
			}
			out.images = append(out.images, mapped)
		}
		return out, nil
	case *featureCollection:
		out := &featureCollection{}
		for _, f := range c.features {
			v, err := e.call(fn, f)
			if err != nil {
				return nil, err
			}
			mapped, ok := v.(*feature)
			if !ok {
				return nil, fmt.Errorf("%w: mapped function returned %T, want a feature", ee.ErrInvalidRequest, v)
			}
			out.features = append(out.features, mapped)
		}
		return out, nil
	}
	return nil, a.wrongType("collection", "a collection")
}

func (e *evaluator) callImage(fn *closure, img *image) (*image, error) {
	v, err := e.call(fn, img)
	if err != nil {
		return nil, err
	}
	mapped, ok := v.(*image)
	if !ok {
		return nil, fmt.Errorf("%w: mapped function returned %T, want an image", ee.ErrInvalidRequest, v)
	}
	return mapped, nil
}

func reduceCollection(e *evaluator, a args) (any, error) {
	r, err := a.reducer("reducer")
	if err != nil {
		return nil, err
	}
	return e.reduceImages(a, r, true)
}

func collectionReducer(r reducer) algorithm {
	return func(e *evaluator, a args) (any, error) {
		return e.reduceImages(a, r, false)
	}
}

// reduceImages reduces the stack pixel by pixel over valid values only. An
// empty collection yields the declared bands fully masked.
func (e *evaluator) reduceImages(a args, r reducer, suffix bool) (*image, error) {
	c, ok := a["collection"].(*imageCollection)
	if !ok {
		return nil, a.wrongType("collection", "an image collection")
	}
	out := &image{props: map[string]any{}}
	for _, name := range c.bands {
		layers := make([]*raster.Raster, 0, len(c.images))
		for _, img := range c.images {
			b, err := img.band(name)
			if err != nil {
				return nil, err
			}
			layers = append(layers, b.r)
		}
		result := raster.New(e.fx.Grid)
		values := make([]float64, 0, len(layers))
		for p := range result.Values {
			values = values[:0]
			for _, l := range layers {
				if l.Valid[p] {
					values = append(values, l.Values[p])
				}
			}
			if v, ok := reduce(r, values).(float64); ok && len(values) > 0 {
				result.Values[p] = v
				result.Valid[p] = true
			}
		}
		if suffix {
			name = name + "_" + string(r)
		}
		out.bands = append(out.bands, band{name: name, r: result})
	}
	return out, nil
}

// reduce sorts values in place. Sums of nothing are zero; other reducers
// return nil.
func reduce(r reducer, values []float64) any {
	switch r {
	case reducerSum:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	case reducerMedian:
		if len(values) == 0 {
			return nil
		}
		sort.Float64s(values)
		mid := len(values) / 2
		if len(values)%2 == 1 {
			return values[mid]
		}
		return (values[mid-1] + values[mid]) / 2
	case reducerMode:
		if len(values) == 0 {
			return nil
		}
		sort.Float64s(values)
		best, bestCount := values[0], 0
		for i := 0; i < len(values); {
			j := i
			for j < len(values) && values[j] == values[i] {
				j++
			}
			if j-i > bestCount {
				best, bestCount = values[i], j-i
			}
			i = j
		}
		return best
	}
	return nil
}

func collectionGeometry(_ *evaluator, a args) (any, error) {
	fc, ok := a["collection"].(*featureCollection)
	if !ok {
		return nil, a.wrongType("collection", "a feature collection")
	}
	return fc.union(), nil
}

func bufferFeature(_ *evaluator, a args) (any, error) {
	distance, err := a.number("distance")
	if err != nil {
		return nil, err
	}
	switch f := a["feature"].(type) {
	case *feature:
		return &feature{region: f.region.buffered(distance), props: f.props}, nil
	case region:
		return &feature{region: f.buffered(distance), props: map[string]any{}}, nil
	}
	return nil, a.wrongType("feature", "a feature")
}

func geometryBounds(_ *evaluator, a args) (any, error) {
	g, err := a.region("geometry")
	if err != nil {
		return nil, err
	}
	b, ok := g.bound()
	if !ok {
		return nil, fmt.Errorf("%w: bounds of an empty geometry", ee.ErrInvalidRequest)
	}
	return regionOf(b.ToPolygon()), nil
}

func geometryCentroid(_ *evaluator, a args) (any, error) {
	g, err := a.region("geometry")
	if err != nil {
		return nil, err
	}
	if len(g.shapes) == 0 {
		return nil, fmt.Errorf("%w: centroid of an empty geometry", ee.ErrInvalidRequest)
	}
	return regionOf(g.centroid()), nil
}

func propertyFilter(test func(x, y float64) bool) algorithm {
	return func(_ *evaluator, a args) (any, error) {
		field, err := a.str("leftField")
		if err != nil {
			return nil, err
		}
		value, err := a.number("rightValue")
		if err != nil {
			return nil, err
		}
		return filter(func(element any) bool {
			v, ok := toFloat(properties(element)[field])
			return ok && test(v, value)
		}), nil
	}
}

func dateRangeFilter(_ *evaluator, a args) (any, error) {
	dr, ok := a["leftValue"].(dateRange)
	if !ok {
		return nil, a.wrongType("leftValue", "a date range")
	}
	field, err := a.str("rightField")
	if err != nil {
		return nil, err
	}
	return filter(func(element any) bool {
		if img, ok := element.(*image); ok && field == ee.PropertyTimeStart {
			return dr.contains(img.start)
		}
		ms, ok := toFloat(properties(element)[field])
		return ok && dr.contains(time.UnixMilli(int64(ms)).UTC())
	}), nil
}

// intersectsFilter treats every scene as covering the fixture grid and tests
// features by bounding box.
func intersectsFilter(e *evaluator, a args) (any, error) {
	g, err := a.region("rightValue")
	if err != nil {
		return nil, err
	}
	gridBound := e.fx.Grid.Bound()
	return filter(func(element any) bool {
		switch el := element.(type) {
		case *image:
			return g.intersects(gridBound)
		case *feature:
			b, ok := el.region.bound()
			return ok && g.intersects(b)
		}
		return false
	}), nil
}

func date(_ *evaluator, a args) (any, error) {
	if s, ok := a["value"].(string); ok {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ee.ErrInvalidRequest, err)
		}
		return t, nil
	}
	ms, err := a.number("value")
	if err != nil {
		return nil, err
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func newDateRange(_ *evaluator, a args) (any, error) {
	start, ok := a["start"].(time.Time)
	if !ok {
		return nil, a.wrongType("start", "a date")
	}
	end, ok := a["end"].(time.Time)
	if !ok {
		return nil, a.wrongType("end", "a date")
	}
	return dateRange{start: start, end: end}, nil
}

func dictionaryGet(_ *evaluator, a args) (any, error) {
	dict, ok := a["dictionary"].(map[string]any)
	if !ok {
		return nil, a.wrongType("dictionary", "a dictionary")
	}
	key, err := a.str("key")
	if err != nil {
		return nil, err
	}
	v, ok := dict[key]
	if !ok {
		return nil, fmt.Errorf("%w: dictionary has no key %q", ee.ErrInvalidRequest, key)
	}
	return v, nil
}
