package earthengine

import (
	"fmt"
	"time"
)

// PropertyTimeStart is the acquisition time property on images, in epoch ms.
const PropertyTimeStart = "system:time_start"

func mappingVar(depth int) string {
	return fmt.Sprintf("_MAPPING_VAR_%d_0", depth)
}

// ImageCollection is a lazy stack of images.
type ImageCollection struct {
	node *Node
}

func (c ImageCollection) Node() *Node { return c.node }

func LoadImageCollection(id string) ImageCollection {
	return ImageCollection{Invoke("ImageCollection.load", map[string]*Node{"id": Constant(id)})}
}

func (c ImageCollection) Filter(f Filter) ImageCollection {
	return ImageCollection{filterCollection(c.node, f)}
}

func (c ImageCollection) FilterBounds(g Geometry) ImageCollection {
	return c.Filter(FilterBounds(g))
}

// FilterDate keeps images acquired in [start, end).
func (c ImageCollection) FilterDate(start, end time.Time) ImageCollection {
	return c.Filter(FilterDateRange(start, end))
}

func (c ImageCollection) Map(fn func(Image) Image) ImageCollection {
	return ImageCollection{Invoke("Collection.map", map[string]*Node{
		"collection": c.node,
		"baseAlgorithm": lambda(func(arg *Node) *Node {
			return fn(ImageFrom(arg)).node
		}),
	})}
}

func (c ImageCollection) Select(bands ...string) ImageCollection {
	return c.Map(func(img Image) Image { return img.Select(bands...) })
}

// Reduce collapses the stack per pixel. Output bands are named
// "<band>_<reducer>", e.g. "B8_median".
func (c ImageCollection) Reduce(r Reducer) Image {
	return Image{Invoke("ImageCollection.reduce", map[string]*Node{
		"collection": c.node,
		"reducer":    r.node,
	})}
}

// Median reduces band by band and keeps the band names.
func (c ImageCollection) Median() Image {
	return Image{Invoke("reduce.median", map[string]*Node{"collection": c.node})}
}

// Mode is the per pixel most frequent value; band names are kept.
func (c ImageCollection) Mode() Image {
	return Image{Invoke("reduce.mode", map[string]*Node{"collection": c.node})}
}

func filterCollection(collection *Node, f Filter) *Node {
	return Invoke("Collection.filter", map[string]*Node{
		"collection": collection,
		"filter":     f.node,
	})
}
