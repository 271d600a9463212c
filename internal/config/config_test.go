package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchReferenceAnalysis(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30.0, cfg.BuiltUp.CloudCeiling)
	assert.Equal(t, 20.0, cfg.Greenness.CloudCeiling)
	assert.Equal(t, 0.1, cfg.BuiltUp.Threshold)
	assert.Equal(t, 0.3, cfg.Greenness.Threshold)
	assert.Equal(t, "B8", cfg.BuiltUp.MaskBand)
	assert.Empty(t, cfg.Greenness.MaskBand)
	assert.Equal(t, 1000.0, cfg.BufferMeters)
	assert.Equal(t, 10.0, cfg.Zonal.Scale)
	assert.Equal(t, 1e13, cfg.Zonal.MaxPixels)
	assert.Equal(t, 0.75, cfg.Dumping.MinConfidence)
	assert.Equal(t, 50.0, cfg.Dumping.FootprintBuffer)
	assert.Equal(t, AllSections, cfg.Sections)

	start, end, err := cfg.Monthly.Later.Range()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), end)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lakewatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
buffer_meters: 500
built_up:
  threshold: 0.15
sections: [water]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cfg.BufferMeters)
	assert.Equal(t, 0.15, cfg.BuiltUp.Threshold)
	assert.Equal(t, "NDBI", cfg.BuiltUp.IndexName)
	assert.Equal(t, 30.0, cfg.BuiltUp.CloudCeiling)
	assert.Equal(t, []string{SectionWater}, cfg.Sections)
	assert.True(t, cfg.HasSection(SectionWater))
	assert.False(t, cfg.HasSection(SectionVegetation))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Sections = []string{"fishing"}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.BuiltUp.CloudCeiling = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Monthly.Later = Period{Start: "2025-06-30", End: "2025-06-01"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monthly.later")

	cfg = Default()
	cfg.Vegetation.Earlier.Start = "June 2024"
	assert.Error(t, cfg.Validate())
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lakewatch.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
