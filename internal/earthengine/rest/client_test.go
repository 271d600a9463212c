package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forest-guardian/lakewatch/internal/config"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/forest-guardian/lakewatch/internal/sentinel"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *test.Hook) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	logger, hook := test.NewNullLogger()
	client := New(Config{
		BaseURL:    server.URL + "/",
		Project:    "waterbody-464317",
		Retries:    3,
		RetryDelay: time.Millisecond,
		TempDir:    t.TempDir(),
	}, server.Client(), logger)
	return client, hook
}

func TestComputeValue(t *testing.T) {
	var got computeValueRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/projects/waterbody-464317/value:compute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"result": 0.0123}`))
	})

	area := ee.PixelArea().Divide(1e6).ReduceRegion(ee.ReducerSum(), ee.LoadFeatureCollection("lakes").Geometry(), 10, 1e13).Get("area")
	value, err := ee.ComputeNumber(context.Background(), client, area)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.InDelta(t, 0.0123, *value, 1e-12)

	require.NotNil(t, got.Expression)
	root := got.Expression.Values[got.Expression.Result]["functionInvocationValue"].(map[string]any)
	assert.Equal(t, "Dictionary.get", root["functionName"])
}

func TestCompositeUsesPlatformAlgorithmNames(t *testing.T) {
	var got computeValueRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"result": {"type": "Image", "bands": []}}`))
	})

	cfg := config.Default()
	req := sentinel.Request{
		Collection: cfg.Assets.Sentinel2,
		Region:     ee.LoadFeatureCollection(cfg.Assets.Lakes).Geometry(),
		Start:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	_, err := client.ComputeValue(context.Background(), sentinel.BuiltUpComposite(req, cfg.BuiltUp))
	require.NoError(t, err)
	require.NotNil(t, got.Expression)

	names := map[string]int{}
	for _, value := range got.Expression.Values {
		if call, ok := value["functionInvocationValue"].(map[string]any); ok {
			names[call["functionName"].(string)]++
		}
	}
	assert.Equal(t, 1, names["reduce.median"])
	assert.NotContains(t, names, "ImageCollection.median")
	assert.Equal(t, 1, names["ImageCollection.load"])
	assert.Equal(t, 1, names["Image.normalizedDifference"])
}

func TestComputeValueNullResult(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": null}`))
	})
	value, err := ee.ComputeNumber(context.Background(), client, ee.Constant(nil))
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client, hook := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error": {"code": 503, "message": "busy", "status": "UNAVAILABLE"}}`))
			return
		}
		w.Write([]byte(`{"result": 1}`))
	})

	value, err := client.ComputeValue(context.Background(), ee.Constant(1.0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, value)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.ComputeValue(context.Background(), ee.Constant(1.0))
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	var apiErr *ee.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestMissingAssetIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"code": 404, "message": "Table 'lakes' not found.", "status": "NOT_FOUND"}}`))
	})

	_, err := client.ComputeValue(context.Background(), ee.LoadFeatureCollection("lakes").Geometry())
	require.Error(t, err)
	assert.ErrorIs(t, err, ee.ErrAssetNotFound)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "Table 'lakes' not found.")
}

func TestTooManyPixelsIsPropagated(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "Image.reduceRegion: Too many pixels in the region.", "status": "INVALID_ARGUMENT"}}`))
	})
	_, err := client.ComputeValue(context.Background(), ee.Constant(1.0))
	assert.ErrorIs(t, err, ee.ErrTooManyPixels)
}

func TestComputePixelsRequest(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/waterbody-464317/image:computePixels", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "bad grid", "status": "INVALID_ARGUMENT"}}`))
	})

	grid := raster.Grid{Width: 4, Height: 2, OriginX: 500000, OriginY: 1400000, PixelWidth: 10, PixelHeight: 10, CRS: "EPSG:32643"}
	_, err := client.ComputePixels(context.Background(), ee.LoadImage("USGS/SRTMGL1_003"), grid)
	assert.ErrorIs(t, err, ee.ErrInvalidRequest)

	assert.Equal(t, "GEO_TIFF", got["fileFormat"])
	g := got["grid"].(map[string]any)
	assert.Equal(t, map[string]any{"width": 4.0, "height": 2.0}, g["dimensions"])
	assert.Equal(t, "EPSG:32643", g["crsCode"])
	transform := g["affineTransform"].(map[string]any)
	assert.Equal(t, 10.0, transform["scaleX"])
	assert.Equal(t, -10.0, transform["scaleY"])
	assert.Equal(t, 1400000.0, transform["translateY"])
}

func TestContextCancelStopsRetries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client.cfg.RetryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.ComputeValue(ctx, ee.Constant(1.0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIdentityNamesEndpointAndProject(t *testing.T) {
	client := New(Config{BaseURL: "https://earthengine.googleapis.com/", Project: "waterbody-464317"}, nil, nil)
	assert.Equal(t, "rest:https://earthengine.googleapis.com/waterbody-464317", client.Identity())
}
