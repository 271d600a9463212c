package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func km2(v float64) *float64 { return &v }

func sampleReport() *Report {
	r := NewReport("run-1", "emulator", []string{"encroachment", "water"})
	r.AddMetric(Metric{
		Section: "encroachment",
		Name:    "encroachment_gain",
		Label:   "2025",
		Region:  RegionBuffer,
		Caption: "Encroachment (NDBI Gain) Area 2025 (km²):",
		Km2:     km2(0.0123),
	})
	r.AddMetric(Metric{
		Section: "water",
		Name:    "water_area",
		Label:   "2024",
		Region:  RegionLake,
		Caption: "Water Area 2024 (km²):",
	})
	r.AddNote("dumping zones are identical for %s and %s", "2024", "2025")
	return r
}

func TestMetricLine(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "Encroachment (NDBI Gain) Area 2025 (km²): 0.0123", r.Metrics[0].Line())
	assert.Equal(t, "Water Area 2024 (km²): null", r.Metrics[1].Line())
	assert.Equal(t, "0.0001", FormatKm2(km2(0.0001)))
	assert.Equal(t, "0", FormatKm2(km2(0)))
}

func TestReportLookup(t *testing.T) {
	r := sampleReport()
	m, ok := r.Metric("water", "water_area")
	require.True(t, ok)
	assert.Equal(t, "2024", m.Label)

	_, ok = r.Metric("water", "vegetation_area")
	assert.False(t, ok)
	assert.Equal(t, []string{"dumping zones are identical for 2024 and 2025"}, r.Notes)
}

func TestAreasCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.csv")
	require.NoError(t, SaveAreas(path, sampleReport().AreaRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id,section,name,label,region,km2")
	assert.Contains(t, string(data), "run-1,encroachment,encroachment_gain,2025,buffer,0.0123")

	rows, err := LoadAreas(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Km2.Value)
	assert.Equal(t, 0.0123, *rows[0].Km2.Value)
	assert.Nil(t, rows[1].Km2.Value)
	assert.Equal(t, RegionLake, rows[1].Region)

	assert.Error(t, SaveAreas(path, nil))
}

func TestReportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	want := sampleReport()
	want.AddLayer(Layer{Section: "water", Name: "Dynamic World Water 2024", File: "layers/03.png"})
	require.NoError(t, SaveReport(path, want))

	got, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Metrics, got.Metrics)
	assert.Equal(t, want.Layers, got.Layers)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}
