package emulator

import (
	"fmt"
	"math"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/raster"
)

func loadImage(e *evaluator, a args) (any, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	fixture, ok := e.fx.Images[id]
	if !ok {
		return nil, fmt.Errorf("%w: image %s", ee.ErrAssetNotFound, id)
	}
	img := &image{props: fixture.Properties}
	for _, b := range fixture.Bands {
		img.bands = append(img.bands, band{name: b.Name, r: b.Raster})
	}
	return img, nil
}

func (e *evaluator) filled(name string, v float64) *image {
	r := raster.New(e.fx.Grid)
	for i := range r.Values {
		r.Values[i] = v
		r.Valid[i] = true
	}
	return &image{bands: []band{{name: name, r: r}}}
}

func constantImage(e *evaluator, a args) (any, error) {
	v, err := a.number("value")
	if err != nil {
		return nil, err
	}
	return e.filled("constant", v), nil
}

func pixelArea(e *evaluator, _ args) (any, error) {
	return e.filled("area", e.fx.Grid.CellArea()), nil
}

func selectBands(_ *evaluator, a args) (any, error) {
	img, err := a.image("input")
	if err != nil {
		return nil, err
	}
	names, err := a.strings("bandSelectors")
	if err != nil {
		return nil, err
	}
	bands := make([]band, 0, len(names))
	for _, name := range names {
		b, err := img.band(name)
		if err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}
	return img.derive(bands), nil
}

func renameBands(_ *evaluator, a args) (any, error) {
	img, err := a.image("input")
	if err != nil {
		return nil, err
	}
	names, err := a.strings("names")
	if err != nil {
		return nil, err
	}
	if len(names) != len(img.bands) {
		return nil, fmt.Errorf("%w: %d names for %d bands", ee.ErrInvalidRequest, len(names), len(img.bands))
	}
	bands := make([]band, len(names))
	for i, b := range img.bands {
		bands[i] = band{name: names[i], r: b.r}
	}
	return img.derive(bands), nil
}

func addBands(_ *evaluator, a args) (any, error) {
	dst, err := a.image("dstImg")
	if err != nil {
		return nil, err
	}
	src, err := a.image("srcImg")
	if err != nil {
		return nil, err
	}
	bands := append([]band{}, dst.bands...)
	for _, b := range src.bands {
		if _, err := dst.band(b.name); err == nil {
			return nil, fmt.Errorf("%w: duplicate band %q", ee.ErrInvalidRequest, b.name)
		}
		bands = append(bands, b)
	}
	return dst.derive(bands), nil
}

// normalizedDifference returns 0 where both bands sum to zero.
func normalizedDifference(_ *evaluator, a args) (any, error) {
	img, err := a.image("input")
	if err != nil {
		return nil, err
	}
	names, err := a.strings("bandNames")
	if err != nil {
		return nil, err
	}
	if len(names) != 2 {
		return nil, fmt.Errorf("%w: normalized difference needs two bands, got %v", ee.ErrInvalidRequest, names)
	}
	first, err := img.band(names[0])
	if err != nil {
		return nil, err
	}
	second, err := img.band(names[1])
	if err != nil {
		return nil, err
	}
	out := raster.New(first.r.Grid)
	for i := range out.Values {
		if !first.r.Valid[i] || !second.r.Valid[i] {
			continue
		}
		x, y := first.r.Values[i], second.r.Values[i]
		out.Valid[i] = true
		if x+y != 0 {
			out.Values[i] = (x - y) / (x + y)
		}
	}
	return img.derive([]band{{name: "nd", r: out}}), nil
}

// pairBands matches bands of two images. A single band image is applied to
// every band of the other; otherwise band counts must agree. Names follow the
// image with more bands, the first image on a tie.
func pairBands(x, y *image) ([][2]band, []string, error) {
	switch {
	case len(x.bands) == 0 || len(y.bands) == 0:
		return nil, nil, fmt.Errorf("%w: image has no bands", ee.ErrInvalidRequest)
	case len(x.bands) == len(y.bands):
		pairs := make([][2]band, len(x.bands))
		for i := range x.bands {
			pairs[i] = [2]band{x.bands[i], y.bands[i]}
		}
		return pairs, x.names(), nil
	case len(x.bands) == 1:
		pairs := make([][2]band, len(y.bands))
		for i := range y.bands {
			pairs[i] = [2]band{x.bands[0], y.bands[i]}
		}
		return pairs, y.names(), nil
	case len(y.bands) == 1:
		pairs := make([][2]band, len(x.bands))
		for i := range x.bands {
			pairs[i] = [2]band{x.bands[i], y.bands[0]}
		}
		return pairs, x.names(), nil
	}
	return nil, nil, fmt.Errorf("%w: cannot pair %d bands with %d bands", ee.ErrInvalidRequest, len(x.bands), len(y.bands))
}

// pixelwise applies op where both inputs are valid. op may mask a pixel by
// returning false.
func pixelwise(a args, op func(x, y float64) (float64, bool)) (any, error) {
	x, err := a.image("image1")
	if err != nil {
		return nil, err
	}
	y, err := a.image("image2")
	if err != nil {
		return nil, err
	}
	pairs, names, err := pairBands(x, y)
	if err != nil {
		return nil, err
	}
	bands := make([]band, len(pairs))
	for i, pair := range pairs {
		left, right := pair[0].r, pair[1].r
		out := raster.New(left.Grid)
		for p := range out.Values {
			if !left.Valid[p] || !right.Valid[p] {
				continue
			}
			if v, ok := op(left.Values[p], right.Values[p]); ok {
				out.Values[p] = v
				out.Valid[p] = true
			}
		}
		bands[i] = band{name: names[i], r: out}
	}
	return x.derive(bands), nil
}

func arithmetic(op func(x, y float64) (float64, bool)) algorithm {
	return func(_ *evaluator, a args) (any, error) {
		return pixelwise(a, op)
	}
}

func comparison(test func(x, y float64) bool) algorithm {
	return arithmetic(func(x, y float64) (float64, bool) {
		if test(x, y) {
			return 1, true
		}
		return 0, true
	})
}

func divide(x, y float64) (float64, bool) {
	if y == 0 {
		return 0, false
	}
	return x / y, true
}

// updateMask keeps pixels where the mask is valid and non-zero.
func updateMask(_ *evaluator, a args) (any, error) {
	img, err := a.image("image")
	if err != nil {
		return nil, err
	}
	mask, err := a.image("mask")
	if err != nil {
		return nil, err
	}
	if len(mask.bands) != 1 && len(mask.bands) != len(img.bands) {
		return nil, fmt.Errorf("%w: mask has %d bands, image has %d", ee.ErrInvalidRequest, len(mask.bands), len(img.bands))
	}
	bands := make([]band, len(img.bands))
	for i, b := range img.bands {
		m := mask.bands[0].r
		if len(mask.bands) > 1 {
			m = mask.bands[i].r
		}
		out := raster.New(b.r.Grid)
		for p := range out.Values {
			if b.r.Valid[p] && m.Valid[p] && m.Values[p] != 0 {
				out.Values[p] = b.r.Values[p]
				out.Valid[p] = true
			}
		}
		bands[i] = band{name: b.name, r: out}
	}
	return img.derive(bands), nil
}

func unmask(_ *evaluator, a args) (any, error) {
	img, err := a.image("input")
	if err != nil {
		return nil, err
	}
	value, err := a.optionalNumber("value", 0)
	if err != nil {
		return nil, err
	}
	bands := make([]band, len(img.bands))
	for i, b := range img.bands {
		out := raster.New(b.r.Grid)
		for p := range out.Values {
			out.Values[p] = value
			if b.r.Valid[p] {
				out.Values[p] = b.r.Values[p]
			}
			out.Valid[p] = true
		}
		bands[i] = band{name: b.name, r: out}
	}
	return img.derive(bands), nil
}

// clip masks pixels whose centre is outside the geometry.
func clip(e *evaluator, a args) (any, error) {
	img, err := a.image("input")
	if err != nil {
		return nil, err
	}
	g, err := a.region("geometry")
	if err != nil {
		return nil, err
	}
	inside := g.mask(e.fx.Grid)
	bands := make([]band, len(img.bands))
	for i, b := range img.bands {
		out := raster.New(b.r.Grid)
		for p := range out.Values {
			if inside[p] && b.r.Valid[p] {
				out.Values[p] = b.r.Values[p]
				out.Valid[p] = true
			}
		}
		bands[i] = band{name: b.name, r: out}
	}
	return img.derive(bands), nil
}

// paint burns color into every band. Without a width the feature interiors
// are filled; with a width, in pixels, only their outlines are drawn.
func paint(e *evaluator, a args) (any, error) {
	img, err := a.image("image")
	if err != nil {
		return nil, err
	}
	fc, ok := a["featureCollection"].(*featureCollection)
	if !ok {
		return nil, a.wrongType("featureCollection", "a feature collection")
	}
	color, err := a.number("color")
	if err != nil {
		return nil, err
	}
	width, err := a.optionalNumber("width", 0)
	if err != nil {
		return nil, err
	}

	g := e.fx.Grid
	painted := make([]bool, g.Len())
	// Every pixel a boundary crosses has its centre within half a diagonal.
	halfWidth := width * g.PixelWidth * math.Sqrt2 / 2
	for _, f := range fc.features {
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				i := g.Index(x, y)
				if painted[i] {
					continue
				}
				center := g.Center(x, y)
				if width > 0 {
					painted[i] = f.region.onOutline(center, halfWidth)
				} else {
					painted[i] = f.region.contains(center)
				}
			}
		}
	}

	bands := make([]band, len(img.bands))
	for i, b := range img.bands {
		out := raster.New(b.r.Grid)
		copy(out.Values, b.r.Values)
		copy(out.Valid, b.r.Valid)
		for p, hit := range painted {
			if hit {
				out.Values[p] = color
				out.Valid[p] = true
			}
		}
		bands[i] = band{name: b.name, r: out}
	}
	return img.derive(bands), nil
}

// reduceRegion reduces each band over the pixels whose centre is inside the
// geometry. Reductions run on the fixture grid; scale only enters the pixel
// ceiling.
func reduceRegion(e *evaluator, a args) (any, error) {
	img, err := a.image("image")
	if err != nil {
		return nil, err
	}
	r, err := a.reducer("reducer")
	if err != nil {
		return nil, err
	}
	g, err := a.region("geometry")
	if err != nil {
		return nil, err
	}
	scale, err := a.optionalNumber("scale", e.fx.Grid.PixelWidth)
	if err != nil {
		return nil, err
	}
	maxPixels, err := a.optionalNumber("maxPixels", 1e7)
	if err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%w: scale must be positive", ee.ErrInvalidRequest)
	}

	inside := g.mask(e.fx.Grid)
	count := 0
	for _, ok := range inside {
		if ok {
			count++
		}
	}
	if pixels := float64(count) * e.fx.Grid.CellArea() / (scale * scale); pixels > maxPixels {
		return nil, fmt.Errorf("%w: %.0f pixels exceed maxPixels %.0f", ee.ErrTooManyPixels, pixels, maxPixels)
	}

	result := make(map[string]any, len(img.bands))
	for _, b := range img.bands {
		values := make([]float64, 0, count)
		for p, ok := range inside {
			if ok && b.r.Valid[p] {
				values = append(values, b.r.Values[p])
			}
		}
		result[b.name] = reduce(r, values)
	}
	return result, nil
}
