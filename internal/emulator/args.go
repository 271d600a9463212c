package emulator

import (
	"fmt"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
)

type args map[string]any

func (a args) missing(name string) error {
	return fmt.Errorf("%w: missing argument %q", ee.ErrInvalidRequest, name)
}

func (a args) wrongType(name string, want string) error {
	return fmt.Errorf("%w: argument %q must be %s, got %T", ee.ErrInvalidRequest, name, want, a[name])
}

func (a args) image(name string) (*image, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return nil, a.missing(name)
	}
	img, ok := v.(*image)
	if !ok {
		return nil, a.wrongType(name, "an image")
	}
	return img, nil
}

func (a args) number(name string) (float64, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return 0, a.missing(name)
	}
	n, ok := toFloat(v)
	if !ok {
		return 0, a.wrongType(name, "a number")
	}
	return n, nil
}

func (a args) optionalNumber(name string, fallback float64) (float64, error) {
	if v, ok := a[name]; !ok || v == nil {
		return fallback, nil
	}
	return a.number(name)
}

func (a args) str(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", a.missing(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", a.wrongType(name, "a string")
	}
	return s, nil
}

func (a args) strings(name string) ([]string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return nil, a.missing(name)
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case string:
		return []string{list}, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, a.wrongType(name, "a list of strings")
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, a.wrongType(name, "a list of strings")
}

// region accepts geometries, features and feature collections.
func (a args) region(name string) (region, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return region{}, a.missing(name)
	}
	switch g := v.(type) {
	case region:
		return g, nil
	case *feature:
		return g.region, nil
	case *featureCollection:
		return g.union(), nil
	}
	return region{}, a.wrongType(name, "a geometry")
}

func (a args) reducer(name string) (reducer, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", a.missing(name)
	}
	r, ok := v.(reducer)
	if !ok {
		return "", a.wrongType(name, "a reducer")
	}
	return r, nil
}

func (a args) filter(name string) (filter, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return nil, a.missing(name)
	}
	f, ok := v.(filter)
	if !ok {
		return nil, a.wrongType(name, "a filter")
	}
	return f, nil
}

func (a args) closure(name string) (*closure, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return nil, a.missing(name)
	}
	c, ok := v.(*closure)
	if !ok {
		return nil, a.wrongType(name, "a function")
	}
	return c, nil
}

func (fc *featureCollection) union() region {
	r := region{}
	for _, f := range fc.features {
		r.shapes = append(r.shapes, f.region.shapes...)
	}
	return r
}
