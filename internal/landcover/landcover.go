// Package landcover derives class masks from the Dynamic World label band.
package landcover

import (
	"github.com/forest-guardian/lakewatch/internal/config"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/sentinel"
)

// Labels is the most frequent label per pixel over the request window,
// clipped to the request region.
func Labels(req sentinel.Request, params config.Landcover) ee.Image {
	return ee.LoadImageCollection(req.Collection).
		FilterBounds(req.Region).
		FilterDate(req.Start, req.End).
		Select(params.Band).
		Mode().
		Clip(req.Region)
}

// BuiltMask is 1 where the label is the built class.
func BuiltMask(labels ee.Image, params config.Landcover) ee.Image {
	return labels.Eq(params.BuiltClass)
}

// WaterMask is 1 where the label is the water class.
func WaterMask(labels ee.Image, params config.Landcover) ee.Image {
	return labels.Eq(params.WaterClass)
}
