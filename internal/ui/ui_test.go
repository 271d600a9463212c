package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSections(t *testing.T) {
	sections, err := ParseSections("")
	require.NoError(t, err)
	assert.Nil(t, sections)

	sections, err = ParseSections(" Water , 3, water ")
	require.NoError(t, err)
	assert.Equal(t, []string{"water", "vegetation"}, sections)

	_, err = ParseSections("4")
	assert.ErrorContains(t, err, "between 1 and 3")

	_, err = ParseSections("encroachment,forest")
	assert.ErrorContains(t, err, `unknown section "forest"`)
}

func TestWriteLayers(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteLayers(&out, config.Default(), []string{config.SectionWater}))

	assert.Equal(t, `base
  - Lake Boundary
  - 1 km Buffer
water
  - Dynamic World Water 2024
  - Dynamic World Water 2025
  - Water Change 2024–2025 (export)
  = Water Area 2024 (km²): [lake]
  = Water Area 2025 (km²): [lake]
`, out.String())

	assert.Error(t, WriteLayers(&out, config.Default(), []string{"forest"}))
}

func TestSummary(t *testing.T) {
	area := 0.024
	report := dataset.NewReport("run-1", "emulator", []string{config.SectionEncroachment})
	report.AddMetric(dataset.Metric{Caption: "Encroachment (NDBI Gain) Area 2025 (km²):", Km2: &area})
	report.AddMetric(dataset.Metric{Caption: "Dumping Area (Open Buildings Buffer) 2025 (km²):"})
	report.AddNote("dumping zones are identical for both years")

	assert.Equal(t, `Run run-1 (emulator)
Encroachment (NDBI Gain) Area 2025 (km²): 0.024
Dumping Area (Open Buildings Buffer) 2025 (km²): null
Note: dumping zones are identical for both years
Results located at: /tmp/out`, Summary(report, "/tmp/out"))
}

func TestFindReports(t *testing.T) {
	dir := t.TempDir()

	older := dataset.NewReport("older", "emulator", config.AllSections)
	older.CreatedAt = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	newer := dataset.NewReport("newer", "rest", config.AllSections)
	newer.CreatedAt = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []*dataset.Report{older, newer} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, r.RunID), 0755))
		require.NoError(t, dataset.SaveReport(filepath.Join(dir, r.RunID, "report.json"), r))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "incomplete"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	reports, err := FindReports(dir)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "newer", reports[0].RunID)
	assert.Equal(t, "older", reports[1].RunID)

	_, err = FindReports(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
