// Package lakes loads the lake polygons and the shoreline buffer every other
// analysis step is restricted to.
package lakes

import (
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
)

// Regions are built once per run and passed to every step that needs them.
type Regions struct {
	Lakes        ee.FeatureCollection
	Buffer       ee.FeatureCollection
	BufferMeters float64
}

// Load grows every lake polygon by bufferMeters.
func Load(assetID string, bufferMeters float64) Regions {
	lakes := ee.LoadFeatureCollection(assetID)
	return Regions{
		Lakes: lakes,
		Buffer: lakes.Map(func(f ee.Feature) ee.Feature {
			return f.Buffer(bufferMeters)
		}),
		BufferMeters: bufferMeters,
	}
}

func (r Regions) LakeGeometry() ee.Geometry {
	return r.Lakes.Geometry()
}

func (r Regions) BufferGeometry() ee.Geometry {
	return r.Buffer.Geometry()
}

// LakeOutline and BufferOutline are 1-valued outline rasters for display.
func (r Regions) LakeOutline() ee.Image {
	return ee.EmptyImage().Paint(r.Lakes, 1, 2)
}

func (r Regions) BufferOutline() ee.Image {
	return ee.EmptyImage().Paint(r.Buffer, 1, 2)
}
