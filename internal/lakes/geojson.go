package lakes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func fetchJSON(ctx context.Context, backend ee.Backend, v ee.Valuer) ([]byte, error) {
	value, err := backend.ComputeValue(ctx, v)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode geometry: %w", err)
	}
	return raw, nil
}

// Extent is the bounding box of the buffered lakes.
func Extent(ctx context.Context, backend ee.Backend, r Regions) (orb.Bound, error) {
	raw, err := fetchJSON(ctx, backend, r.BufferGeometry().Bounds())
	if err != nil {
		return orb.Bound{}, fmt.Errorf("failed to compute lake extent: %w", err)
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("failed to decode lake extent: %w", err)
	}
	return g.Geometry().Bound(), nil
}

// Centroid returns the lake centroid as latitude, longitude.
func Centroid(ctx context.Context, backend ee.Backend, r Regions) (float64, float64, error) {
	raw, err := fetchJSON(ctx, backend, r.LakeGeometry().Centroid())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute lake centroid: %w", err)
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode lake centroid: %w", err)
	}
	point, ok := g.Geometry().(orb.Point)
	if !ok {
		return 0, 0, errors.New("error getting centroid")
	}
	return point.Y(), point.X(), nil
}

// Features downloads the lake polygons.
func Features(ctx context.Context, backend ee.Backend, r Regions) (*geojson.FeatureCollection, error) {
	raw, err := fetchJSON(ctx, backend, r.Lakes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lakes: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode lakes: %w", err)
	}
	return fc, nil
}
