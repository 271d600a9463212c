package emulator

import (
	"fmt"
	"maps"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
)

type algorithm func(e *evaluator, a args) (any, error)

var algorithms map[string]algorithm

func init() {
	algorithms = map[string]algorithm{
		"Image.load":                 loadImage,
		"Image.constant":             constantImage,
		"Image.pixelArea":            pixelArea,
		"Image.select":               selectBands,
		"Image.rename":               renameBands,
		"Image.addBands":             addBands,
		"Image.normalizedDifference": normalizedDifference,
		"Image.gt":                   comparison(func(x, y float64) bool { return x > y }),
		"Image.lt":                   comparison(func(x, y float64) bool { return x < y }),
		"Image.eq":                   comparison(func(x, y float64) bool { return x == y }),
		"Image.and":                  comparison(func(x, y float64) bool { return x != 0 && y != 0 }),
		"Image.or":                   comparison(func(x, y float64) bool { return x != 0 || y != 0 }),
		"Image.subtract":             arithmetic(func(x, y float64) (float64, bool) { return x - y, true }),
		"Image.add":                  arithmetic(func(x, y float64) (float64, bool) { return x + y, true }),
		"Image.multiply":             arithmetic(func(x, y float64) (float64, bool) { return x * y, true }),
		"Image.divide":               arithmetic(divide),
		"Image.updateMask":           updateMask,
		"Image.unmask":               unmask,
		"Image.clip":                 clip,
		"Image.paint":                paint,
		"Image.reduceRegion":         reduceRegion,
		"ImageCollection.load":       loadImageCollection,
		"ImageCollection.reduce":     reduceCollection,
		"reduce.median":              collectionReducer(reducerMedian),
		"reduce.mode":                collectionReducer(reducerMode),
		"FeatureCollection.load":     loadFeatureCollection,
		"Collection.filter":          filterCollection,
		"Collection.map":             mapCollection,
		"Collection.geometry":        collectionGeometry,
		"Feature.buffer":             bufferFeature,
		"Geometry.bounds":            geometryBounds,
		"Geometry.centroid":          geometryCentroid,
		"Filter.lessThan":            propertyFilter(func(x, y float64) bool { return x < y }),
		"Filter.greaterThan":         propertyFilter(func(x, y float64) bool { return x > y }),
		"Filter.dateRangeContains":   dateRangeFilter,
		"Filter.intersects":          intersectsFilter,
		"Date":                       date,
		"DateRange":                  newDateRange,
		"Dictionary.get":             dictionaryGet,
		"Reducer.sum":                func(*evaluator, args) (any, error) { return reducerSum, nil },
		"Reducer.median":             func(*evaluator, args) (any, error) { return reducerMedian, nil },
		"Reducer.mode":               func(*evaluator, args) (any, error) { return reducerMode, nil },
	}
}

// evaluator computes one request. Values of closed sub-graphs are memoized
// per node, so shared sub-expressions are computed once.
type evaluator struct {
	fx    *Fixtures
	cache map[*ee.Node]any
}

func newEvaluator(fx *Fixtures) *evaluator {
	return &evaluator{fx: fx, cache: map[*ee.Node]any{}}
}

func (e *evaluator) eval(n *ee.Node, env map[string]any) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case ee.KindConstant:
		return n.Constant, nil
	case ee.KindArgument:
		v, ok := env[n.Name]
		if !ok {
			return nil, fmt.Errorf("%w: unbound variable %s", ee.ErrInvalidRequest, n.Name)
		}
		return v, nil
	case ee.KindArray:
		items := make([]any, len(n.Items))
		for i, item := range n.Items {
			v, err := e.eval(item, env)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case ee.KindDictionary:
		entries := make(map[string]any, len(n.Entries))
		for k, item := range n.Entries {
			v, err := e.eval(item, env)
			if err != nil {
				return nil, err
			}
			entries[k] = v
		}
		return entries, nil
	case ee.KindFunction:
		return &closure{params: n.Params, body: n.Body, env: env}, nil
	case ee.KindInvocation:
		return e.invoke(n, env)
	}
	return nil, fmt.Errorf("%w: unknown node kind %d", ee.ErrInvalidRequest, n.Kind)
}

func (e *evaluator) invoke(n *ee.Node, env map[string]any) (any, error) {
	if env == nil {
		if v, ok := e.cache[n]; ok {
			return v, nil
		}
	}
	fn, ok := algorithms[n.Function]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %s", ee.ErrInvalidRequest, n.Function)
	}
	a := args{}
	for name, arg := range n.Args {
		v, err := e.eval(arg, env)
		if err != nil {
			return nil, err
		}
		a[name] = v
	}
	v, err := fn(e, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Function, err)
	}
	if env == nil {
		e.cache[n] = v
	}
	return v, nil
}

func (e *evaluator) call(c *closure, arg any) (any, error) {
	if len(c.params) != 1 {
		return nil, fmt.Errorf("%w: mapped function takes %d arguments", ee.ErrInvalidRequest, len(c.params))
	}
	env := make(map[string]any, len(c.env)+1)
	maps.Copy(env, c.env)
	env[c.params[0]] = arg
	return e.eval(c.body, env)
}
