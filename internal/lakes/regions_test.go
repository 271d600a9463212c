package lakes

import (
	"context"
	"testing"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/emulator"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assets = emulator.DemoAssets{Lakes: "lakes", Sentinel2: "s2", DynamicWorld: "dw", Buildings: "ob", Elevation: "dem"}

func demoBackend(t *testing.T) *emulator.Backend {
	t.Helper()
	logger, _ := test.NewNullLogger()
	b, err := emulator.New(emulator.Demo(assets), logger)
	require.NoError(t, err)
	return b
}

func TestLoadBuffersEveryLake(t *testing.T) {
	r := Load("lakes", 1000)

	buffers := ee.FindInvocations(r.Buffer, "Feature.buffer")
	require.Len(t, buffers, 1)
	assert.Equal(t, 1000.0, buffers[0].Arg("distance").Constant)

	loads := ee.FindInvocations(r.BufferGeometry(), "FeatureCollection.load")
	require.Len(t, loads, 1)
	assert.Equal(t, "lakes", loads[0].Arg("tableId").Constant)
	assert.Same(t, r.Lakes.Node(), loads[0])
}

func TestExtentAndCentroid(t *testing.T) {
	backend := demoBackend(t)
	ctx := context.Background()

	r := Load("lakes", 100)
	extent, err := Extent(ctx, backend, r)
	require.NoError(t, err)
	assert.InDelta(t, 500600-350, extent.Min.X(), 1)
	assert.InDelta(t, 500600+350, extent.Max.X(), 1)

	lat, lon, err := Centroid(ctx, backend, r)
	require.NoError(t, err)
	assert.InDelta(t, 1399400, lat, 1)
	assert.InDelta(t, 500600, lon, 1)

	fc, err := Features(ctx, backend, r)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Demo Lake", fc.Features[0].Properties["name"])
}

func TestOutlinesTouchOnlyBoundaries(t *testing.T) {
	backend := demoBackend(t)
	r := Load("lakes", 100)

	outline, err := backend.ComputePixels(context.Background(), r.LakeOutline(), emulator.DemoGrid)
	require.NoError(t, err)
	assert.Positive(t, outline.ValidCount())
	_, inside := outline.At(60, 60)
	assert.False(t, inside)
}
