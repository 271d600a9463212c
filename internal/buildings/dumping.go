// Package buildings turns the building footprint table into the dumping
// proximity zones painted around confident detections.
package buildings

import (
	"github.com/forest-guardian/lakewatch/internal/config"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
)

// Footprints are the detections intersecting region with confidence strictly
// above the configured minimum, each grown by the footprint buffer.
func Footprints(tableID string, region ee.Geometry, params config.Dumping) ee.FeatureCollection {
	distance := params.FootprintBuffer
	return ee.LoadFeatureCollection(tableID).
		FilterBounds(region).
		Filter(ee.FilterGreaterThan(params.ConfidenceProperty, params.MinConfidence)).
		Map(func(f ee.Feature) ee.Feature {
			return f.Buffer(distance)
		})
}

// DumpingZones is 1 inside any buffered footprint and masked elsewhere,
// clipped to region. The footprint table carries no acquisition date, so the
// same zones serve every period.
func DumpingZones(tableID string, region ee.Geometry, params config.Dumping) ee.Image {
	return ee.EmptyImage().
		Paint(Footprints(tableID, region, params), 1, 0).
		Clip(region)
}
