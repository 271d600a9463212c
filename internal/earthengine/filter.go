package earthengine

import "time"

// Filter selects collection elements.
type Filter struct {
	node *Node
}

func (f Filter) Node() *Node { return f.node }

func FilterLessThan(property string, value float64) Filter {
	return Filter{Invoke("Filter.lessThan", map[string]*Node{
		"leftField":  Constant(property),
		"rightValue": Constant(value),
	})}
}

func FilterGreaterThan(property string, value float64) Filter {
	return Filter{Invoke("Filter.greaterThan", map[string]*Node{
		"leftField":  Constant(property),
		"rightValue": Constant(value),
	})}
}

// FilterDateRange matches elements whose start time is in [start, end).
func FilterDateRange(start, end time.Time) Filter {
	return Filter{Invoke("Filter.dateRangeContains", map[string]*Node{
		"leftValue": Invoke("DateRange", map[string]*Node{
			"start": Date(start),
			"end":   Date(end),
		}),
		"rightField": Constant(PropertyTimeStart),
	})}
}

// FilterBounds matches elements whose geometry intersects g.
func FilterBounds(g Geometry) Filter {
	return Filter{Invoke("Filter.intersects", map[string]*Node{
		"leftField":  Constant(".all"),
		"rightValue": g.node,
	})}
}

// Date encodes t as epoch milliseconds.
func Date(t time.Time) *Node {
	return Invoke("Date", map[string]*Node{"value": Constant(t.UTC().UnixMilli())})
}
