// Package emulator evaluates expression graphs in process over small fixture
// catalogues. It mirrors the hosted platform closely enough to run the whole
// analysis offline and to make its results reproducible in tests.
package emulator

import (
	"context"
	"fmt"
	"time"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/sirupsen/logrus"
)

type Backend struct {
	fx       *Fixtures
	identity string
	log      logrus.FieldLogger
}

var (
	_ ee.Backend    = (*Backend)(nil)
	_ ee.Identified = (*Backend)(nil)
)

func New(fx *Fixtures, log logrus.FieldLogger) (*Backend, error) {
	if fx == nil {
		return nil, fmt.Errorf("emulator: no fixtures")
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	fingerprint, err := fx.Fingerprint()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Backend{fx: fx, identity: "emulator:" + fingerprint, log: log.WithField("backend", "emulator")}, nil
}

// Identity names the fixture catalogue by its content.
func (b *Backend) Identity() string {
	return b.identity
}

func (b *Backend) Grid() raster.Grid {
	return b.fx.Grid
}

func (b *Backend) evaluate(ctx context.Context, v ee.Valuer) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v == nil || v.Node() == nil {
		return nil, fmt.Errorf("%w: nil expression", ee.ErrInvalidRequest)
	}
	start := time.Now()
	out, err := newEvaluator(b.fx).eval(v.Node(), nil)
	b.log.WithField("elapsed", time.Since(start)).Debug("evaluated expression")
	return out, err
}

func (b *Backend) ComputeValue(ctx context.Context, v ee.Valuer) (any, error) {
	out, err := b.evaluate(ctx, v)
	if err != nil {
		return nil, err
	}
	return plain(out)
}

// ComputePixels renders the first band of img, resampled to grid.
func (b *Backend) ComputePixels(ctx context.Context, img ee.Image, grid raster.Grid) (*raster.Raster, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	out, err := b.evaluate(ctx, img)
	if err != nil {
		return nil, err
	}
	computed, ok := out.(*image)
	if !ok {
		return nil, fmt.Errorf("%w: expression is %T, not an image", ee.ErrInvalidRequest, out)
	}
	if len(computed.bands) == 0 {
		return nil, fmt.Errorf("%w: image has no bands", ee.ErrInvalidRequest)
	}
	return computed.bands[0].r.Resample(grid), nil
}

// plain converts evaluated values into the JSON shapes the REST API answers with.
func plain(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, float64:
		return val, nil
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			p, err := plain(item)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			p, err := plain(item)
			if err != nil {
				return nil, err
			}
			out[k] = p
		}
		return out, nil
	case time.Time:
		return map[string]any{"type": "Date", "value": float64(val.UnixMilli())}, nil
	case region:
		return geometryJSON(val.geometry())
	case *feature:
		return featureJSON(val)
	case *featureCollection:
		features := make([]any, 0, len(val.features))
		for _, f := range val.features {
			fj, err := featureJSON(f)
			if err != nil {
				return nil, err
			}
			features = append(features, fj)
		}
		return map[string]any{"type": "FeatureCollection", "features": features}, nil
	case *image:
		return imageInfo(val), nil
	case *imageCollection:
		images := make([]any, 0, len(val.images))
		for _, img := range val.images {
			images = append(images, imageInfo(img))
		}
		return map[string]any{"type": "ImageCollection", "bands": toAny(val.bands), "features": images}, nil
	}
	if n, ok := toFloat(v); ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: cannot compute a value of type %T", ee.ErrInvalidRequest, v)
}

func featureJSON(f *feature) (map[string]any, error) {
	g, err := geometryJSON(f.region.geometry())
	if err != nil {
		return nil, err
	}
	props, err := plain(f.props)
	if err != nil {
		return nil, err
	}
	return map[string]any{"type": "Feature", "geometry": g, "properties": props}, nil
}

func imageInfo(img *image) map[string]any {
	bands := make([]any, len(img.bands))
	for i, b := range img.bands {
		bands[i] = map[string]any{"id": b.name}
	}
	props := map[string]any{}
	for k, v := range img.props {
		if p, err := plain(v); err == nil {
			props[k] = p
		}
	}
	return map[string]any{"type": "Image", "bands": bands, "properties": props}
}

func toAny(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
