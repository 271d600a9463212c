package earthengine

// Geometry is a lazy geometry; regions passed to clip and reductions.
type Geometry struct {
	node *Node
}

func (g Geometry) Node() *Node { return g.node }

func (g Geometry) Bounds() Geometry {
	return Geometry{Invoke("Geometry.bounds", map[string]*Node{"geometry": g.node})}
}

func (g Geometry) Centroid() Geometry {
	return Geometry{Invoke("Geometry.centroid", map[string]*Node{"geometry": g.node})}
}

// Feature is a geometry with properties.
type Feature struct {
	node *Node
}

func (f Feature) Node() *Node { return f.node }

func FeatureFrom(n *Node) Feature { return Feature{node: n} }

// Buffer grows the feature geometry by distance metres.
func (f Feature) Buffer(distance float64) Feature {
	return Feature{Invoke("Feature.buffer", map[string]*Node{
		"feature":  f.node,
		"distance": Constant(distance),
	})}
}

// FeatureCollection is a lazy vector table.
type FeatureCollection struct {
	node *Node
}

func (c FeatureCollection) Node() *Node { return c.node }

func LoadFeatureCollection(tableID string) FeatureCollection {
	return FeatureCollection{Invoke("FeatureCollection.load", map[string]*Node{"tableId": Constant(tableID)})}
}

func (c FeatureCollection) Filter(f Filter) FeatureCollection {
	return FeatureCollection{filterCollection(c.node, f)}
}

func (c FeatureCollection) FilterBounds(g Geometry) FeatureCollection {
	return c.Filter(FilterBounds(g))
}

func (c FeatureCollection) Map(fn func(Feature) Feature) FeatureCollection {
	return FeatureCollection{Invoke("Collection.map", map[string]*Node{
		"collection": c.node,
		"baseAlgorithm": lambda(func(arg *Node) *Node {
			return fn(FeatureFrom(arg)).node
		}),
	})}
}

// Geometry unions every feature geometry.
func (c FeatureCollection) Geometry() Geometry {
	return Geometry{Invoke("Collection.geometry", map[string]*Node{"collection": c.node})}
}
