// Package zonal sums masked pixel areas over a region.
package zonal

import (
	"context"
	"fmt"

	"github.com/forest-guardian/lakewatch/internal/cache"
	"github.com/forest-guardian/lakewatch/internal/config"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/sirupsen/logrus"
)

const areaBand = "area"

// PixelAreaKm2 holds the area of every pixel in square kilometres.
func PixelAreaKm2() ee.Image {
	return ee.PixelArea().Divide(1e6)
}

type Request struct {
	Name   string
	Mask   ee.Image
	Region ee.Geometry
	// Zero values fall back to 10 m and 1e13 pixels.
	Scale     float64
	MaxPixels float64
}

// NewRequest fills scale and pixel ceiling from configuration.
func NewRequest(name string, mask ee.Image, region ee.Geometry, params config.Zonal) Request {
	return Request{Name: name, Mask: mask, Region: region, Scale: params.Scale, MaxPixels: params.MaxPixels}
}

// Result is one named area. Km2 is nil when the backend returned no value.
type Result struct {
	Name string   `json:"name"`
	Km2  *float64 `json:"km2"`
}

// Expression is the scalar the backend evaluates for req.
func Expression(req Request) *ee.Node {
	scale, maxPixels := req.Scale, req.MaxPixels
	if scale <= 0 {
		scale = 10
	}
	if maxPixels <= 0 {
		maxPixels = 1e13
	}
	return PixelAreaKm2().
		UpdateMask(req.Mask).
		ReduceRegion(ee.ReducerSum(), req.Region, scale, maxPixels).
		Get(areaBand)
}

// Area evaluates req without caching.
func Area(ctx context.Context, backend ee.Backend, req Request) (Result, error) {
	return (&Aggregator{Backend: backend}).Area(ctx, req)
}

// Aggregator evaluates area requests, optionally through a digest-keyed cache.
type Aggregator struct {
	Backend ee.Backend
	// Namespace separates cache entries of different backends.
	Namespace string
	Cache     cache.Service[Result]
	Log       logrus.FieldLogger
}

func (a *Aggregator) Area(ctx context.Context, req Request) (Result, error) {
	expr := Expression(req)

	var key string
	if a.Cache != nil {
		digest, err := ee.Digest(expr)
		if err != nil {
			return Result{}, fmt.Errorf("failed to digest %s: %w", req.Name, err)
		}
		key = cache.Key(a.Namespace, digest)
		if cached, ok := a.Cache.Get(key); ok {
			a.logger().WithFields(logrus.Fields{"name": req.Name, "digest": digest}).Debug("area served from cache")
			cached.Name = req.Name
			return cached, nil
		}
	}

	km2, err := ee.ComputeNumber(ctx, a.Backend, expr)
	if err != nil {
		return Result{}, fmt.Errorf("failed to compute %s: %w", req.Name, err)
	}
	result := Result{Name: req.Name, Km2: km2}

	if a.Cache != nil {
		if err := a.Cache.Set(key, result); err != nil {
			a.logger().WithError(err).Warn("failed to cache area")
		}
	}
	return result, nil
}

func (a *Aggregator) logger() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}
