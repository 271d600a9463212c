package output

import (
	"fmt"
	"os"

	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CreateGeoJSON writes the lake features followed by a footprint feature of
// the rendered area that carries every metric as a property.
func CreateGeoJSON(lakes *geojson.FeatureCollection, footprint orb.Bound, report *dataset.Report, outputPath string) error {
	fc := geojson.NewFeatureCollection()
	if lakes != nil {
		for _, f := range lakes.Features {
			lake := geojson.NewFeature(f.Geometry)
			for k, v := range f.Properties {
				lake.Properties[k] = v
			}
			lake.Properties["kind"] = "lake"
			fc.Append(lake)
		}
	}

	summary := geojson.NewFeature(footprint.ToPolygon())
	summary.Properties["kind"] = "footprint"
	summary.Properties["run_id"] = report.RunID
	for _, m := range report.Metrics {
		key := m.Section + "." + m.Name + "." + m.Label
		if m.Km2 == nil {
			summary.Properties[key] = nil
		} else {
			summary.Properties[key] = *m.Km2
		}
	}
	fc.Append(summary)

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write GeoJSON: %w", err)
	}
	return nil
}
