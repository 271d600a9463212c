package emulator

import (
	"fmt"
	"time"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/raster"
)

type band struct {
	name string
	r    *raster.Raster
}

type image struct {
	bands []band
	start time.Time
	props map[string]any
}

func (img *image) names() []string {
	names := make([]string, len(img.bands))
	for i, b := range img.bands {
		names[i] = b.name
	}
	return names
}

func (img *image) band(name string) (band, error) {
	for _, b := range img.bands {
		if b.name == name {
			return b, nil
		}
	}
	return band{}, fmt.Errorf("%w: %q (available %v)", ee.ErrBandNotFound, name, img.names())
}

// derive keeps acquisition metadata, which survives pixel operations.
func (img *image) derive(bands []band) *image {
	return &image{bands: bands, start: img.start, props: img.props}
}

type imageCollection struct {
	// bands are the declared band names, known even when images is empty.
	bands  []string
	images []*image
}

type feature struct {
	region region
	props  map[string]any
}

type featureCollection struct {
	features []*feature
}

type closure struct {
	params []string
	body   *ee.Node
	env    map[string]any
}

type dateRange struct {
	start, end time.Time
}

func (d dateRange) contains(t time.Time) bool {
	return !t.Before(d.start) && t.Before(d.end)
}

type filter func(element any) bool

type reducer string

const (
	reducerSum    reducer = "sum"
	reducerMedian reducer = "median"
	reducerMode   reducer = "mode"
)

func properties(element any) map[string]any {
	switch e := element.(type) {
	case *image:
		return e.props
	case *feature:
		return e.props
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint8:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
