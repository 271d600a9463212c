package earthengine

// Image is a lazy single raster with named bands.
type Image struct {
	node *Node
}

func (i Image) Node() *Node { return i.node }

// ImageFrom wraps an existing node, typically a lambda argument.
func ImageFrom(n *Node) Image { return Image{node: n} }

func LoadImage(id string) Image {
	return Image{Invoke("Image.load", map[string]*Node{"id": Constant(id)})}
}

// ConstantImage is a single band image with value v everywhere.
func ConstantImage(v float64) Image {
	return Image{Invoke("Image.constant", map[string]*Node{"value": Constant(v)})}
}

// EmptyImage has a single fully masked band named "constant"; the canvas
// features are painted onto.
func EmptyImage() Image {
	return ConstantImage(0).UpdateMask(ConstantImage(0))
}

// PixelArea has one band, "area", holding each pixel's area in square metres.
func PixelArea() Image {
	return Image{Invoke("Image.pixelArea", nil)}
}

func (i Image) Select(bands ...string) Image {
	return Image{Invoke("Image.select", map[string]*Node{
		"input":         i.node,
		"bandSelectors": Constant(bands),
	})}
}

func (i Image) Rename(names ...string) Image {
	return Image{Invoke("Image.rename", map[string]*Node{
		"input": i.node,
		"names": Constant(names),
	})}
}

func (i Image) AddBands(src Image) Image {
	return Image{Invoke("Image.addBands", map[string]*Node{
		"dstImg": i.node,
		"srcImg": src.node,
	})}
}

// NormalizedDifference computes (a - b) / (a + b) into a band named "nd".
func (i Image) NormalizedDifference(a, b string) Image {
	return Image{Invoke("Image.normalizedDifference", map[string]*Node{
		"input":     i.node,
		"bandNames": Constant([]string{a, b}),
	})}
}

func (i Image) binary(function string, other Image) Image {
	return Image{Invoke(function, map[string]*Node{
		"image1": i.node,
		"image2": other.node,
	})}
}

func (i Image) Gt(v float64) Image { return i.binary("Image.gt", ConstantImage(v)) }
func (i Image) Eq(v float64) Image { return i.binary("Image.eq", ConstantImage(v)) }
func (i Image) Divide(v float64) Image { return i.binary("Image.divide", ConstantImage(v)) }
func (i Image) And(other Image) Image { return i.binary("Image.and", other) }
func (i Image) Subtract(other Image) Image { return i.binary("Image.subtract", other) }
func (i Image) Multiply(other Image) Image { return i.binary("Image.multiply", other) }

func (i Image) UpdateMask(mask Image) Image {
	return Image{Invoke("Image.updateMask", map[string]*Node{
		"image": i.node,
		"mask":  mask.node,
	})}
}

// Unmask replaces masked pixels with v.
func (i Image) Unmask(v float64) Image {
	return Image{Invoke("Image.unmask", map[string]*Node{
		"input": i.node,
		"value": Constant(v),
	})}
}

func (i Image) Clip(g Geometry) Image {
	return Image{Invoke("Image.clip", map[string]*Node{
		"input":    i.node,
		"geometry": g.node,
	})}
}

// Paint burns color into every pixel covered by the collection. A positive
// width paints only the outlines.
func (i Image) Paint(fc FeatureCollection, color float64, width float64) Image {
	args := map[string]*Node{
		"image":             i.node,
		"featureCollection": fc.node,
		"color":             Constant(color),
	}
	if width > 0 {
		args["width"] = Constant(width)
	}
	return Image{Invoke("Image.paint", args)}
}

func (i Image) ReduceRegion(r Reducer, region Geometry, scale float64, maxPixels float64) Dict {
	return Dict{Invoke("Image.reduceRegion", map[string]*Node{
		"image":     i.node,
		"reducer":   r.node,
		"geometry":  region.node,
		"scale":     Constant(scale),
		"maxPixels": Constant(maxPixels),
	})}
}

// Dict is a lazy dictionary, the result of region reductions.
type Dict struct {
	node *Node
}

func (d Dict) Node() *Node { return d.node }

// Get extracts one entry.
func (d Dict) Get(key string) *Node {
	return Invoke("Dictionary.get", map[string]*Node{
		"dictionary": d.node,
		"key":        Constant(key),
	})
}

// Reducer aggregates many values into one.
type Reducer struct {
	node *Node
}

func (r Reducer) Node() *Node { return r.node }

func ReducerSum() Reducer { return Reducer{Invoke("Reducer.sum", nil)} }
func ReducerMedian() Reducer { return Reducer{Invoke("Reducer.median", nil)} }
func ReducerMode() Reducer { return Reducer{Invoke("Reducer.mode", nil)} }
