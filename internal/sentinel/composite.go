// Package sentinel builds cloud-filtered Sentinel-2 median composites and the
// spectral index masks derived from them.
package sentinel

import (
	"time"

	"github.com/forest-guardian/lakewatch/internal/config"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
)

// Request selects the scenes of one composite.
type Request struct {
	Collection string
	Region     ee.Geometry
	Start      time.Time
	// End is exclusive.
	End time.Time
}

// NewRequest resolves a configured period.
func NewRequest(collection string, region ee.Geometry, period config.Period) (Request, error) {
	start, end, err := period.Range()
	if err != nil {
		return Request{}, err
	}
	return Request{Collection: collection, Region: region, Start: start, End: end}, nil
}

// composite filters the collection to region, window and cloud ceiling,
// optionally masks non-positive pixels of the mask band, takes the per-pixel
// median, clips it and appends the normalized difference index band.
func composite(req Request, params config.Composite) ee.Image {
	scenes := ee.LoadImageCollection(req.Collection).
		FilterBounds(req.Region).
		FilterDate(req.Start, req.End).
		Filter(ee.FilterLessThan(params.CloudProperty, params.CloudCeiling))
	if params.MaskBand != "" {
		band := params.MaskBand
		scenes = scenes.Map(func(img ee.Image) ee.Image {
			return img.UpdateMask(img.Select(band).Gt(0))
		})
	}
	median := scenes.Median().Clip(req.Region)
	index := median.NormalizedDifference(params.First, params.Second).Rename(params.IndexName)
	return median.AddBands(index)
}

// BuiltUpComposite carries the built-up index band, NDBI by default.
func BuiltUpComposite(req Request, params config.Composite) ee.Image {
	return composite(req, params)
}

// VegetationComposite carries the vegetation index band, NDVI by default.
func VegetationComposite(req Request, params config.Composite) ee.Image {
	return composite(req, params)
}

// BuiltUpMask is 1 where the built-up index strictly exceeds the threshold.
func BuiltUpMask(composite ee.Image, params config.Composite) ee.Image {
	return composite.Select(params.IndexName).Gt(params.Threshold)
}

// VegetationMask is 1 where the vegetation index strictly exceeds the threshold.
func VegetationMask(composite ee.Image, params config.Composite) ee.Image {
	return composite.Select(params.IndexName).Gt(params.Threshold)
}
