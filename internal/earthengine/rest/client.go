// Package rest is the Backend that talks to the hosted platform over its REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/sirupsen/logrus"
)

const (
	defaultRetries    = 10
	defaultRetryDelay = 5 * time.Second
)

type Config struct {
	BaseURL    string
	Project    string
	Retries    int
	RetryDelay time.Duration
	// NoData is burnt into masked pixels before download and masked again after decoding.
	NoData float64
	// TempDir receives downloaded GeoTIFFs while they are decoded.
	TempDir string
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logrus.FieldLogger
}

var (
	_ ee.Backend    = (*Client)(nil)
	_ ee.Identified = (*Client)(nil)
)

func New(cfg Config, httpClient *http.Client, log logrus.FieldLogger) *Client {
	if cfg.Retries <= 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpClient, log: log.WithField("backend", "rest")}
}

// Identity names the platform endpoint and the billing project.
func (c *Client) Identity() string {
	return "rest:" + c.cfg.BaseURL + "/" + c.cfg.Project
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/v1/projects/%s/%s", c.cfg.BaseURL, c.cfg.Project, method)
}

type computeValueRequest struct {
	Expression *ee.Expression `json:"expression"`
}

type computeValueResponse struct {
	Result any `json:"result"`
}

func (c *Client) ComputeValue(ctx context.Context, v ee.Valuer) (any, error) {
	expr, err := ee.Encode(v)
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, "value:compute", computeValueRequest{Expression: expr})
	if err != nil {
		return nil, err
	}
	var response computeValueResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode value:compute response: %w", err)
	}
	return response.Result, nil
}

type pixelGrid struct {
	Dimensions      gridDimensions  `json:"dimensions"`
	AffineTransform affineTransform `json:"affineTransform"`
	CrsCode         string          `json:"crsCode,omitempty"`
}

type gridDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type affineTransform struct {
	ScaleX     float64 `json:"scaleX"`
	ShearX     float64 `json:"shearX"`
	TranslateX float64 `json:"translateX"`
	ShearY     float64 `json:"shearY"`
	ScaleY     float64 `json:"scaleY"`
	TranslateY float64 `json:"translateY"`
}

type computePixelsRequest struct {
	Expression *ee.Expression `json:"expression"`
	FileFormat string         `json:"fileFormat"`
	Grid       pixelGrid      `json:"grid"`
}

func gridPayload(g raster.Grid) pixelGrid {
	return pixelGrid{
		Dimensions: gridDimensions{Width: g.Width, Height: g.Height},
		AffineTransform: affineTransform{
			ScaleX:     g.PixelWidth,
			TranslateX: g.OriginX,
			ScaleY:     -g.PixelHeight,
			TranslateY: g.OriginY,
		},
		CrsCode: g.CRS,
	}
}

func (c *Client) ComputePixels(ctx context.Context, img ee.Image, grid raster.Grid) (*raster.Raster, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	expr, err := ee.Encode(img.Unmask(c.cfg.NoData))
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, "image:computePixels", computePixelsRequest{
		Expression: expr,
		FileFormat: "GEO_TIFF",
		Grid:       gridPayload(grid),
	})
	if err != nil {
		return nil, err
	}

	file, err := os.CreateTemp(c.cfg.TempDir, "pixels-*.tif")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(file.Name())
	if _, err := file.Write(body); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write GeoTIFF: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to write GeoTIFF: %w", err)
	}

	r, err := raster.ReadGeoTIFF(file.Name(), grid.CRS, c.cfg.NoData)
	if err != nil {
		return nil, err
	}
	if r.Width != grid.Width || r.Height != grid.Height {
		r = r.Resample(grid)
	}
	return r, nil
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func decodeError(response *http.Response, body []byte) *ee.APIError {
	apiErr := &ee.APIError{StatusCode: response.StatusCode, Status: http.StatusText(response.StatusCode), Message: strings.TrimSpace(string(body))}
	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		if parsed.Error.Status != "" {
			apiErr.Status = parsed.Error.Status
		}
	}
	return apiErr
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// post sends payload and returns the body of a 200 answer. Transport errors,
// 429 and 5xx answers are retried after a fixed delay.
func (c *Client) post(ctx context.Context, method string, payload any) ([]byte, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}
	url := c.endpoint(method)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
		body, status, err := c.do(ctx, url, requestBody)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if status != 0 && !retryable(status) {
			return nil, err
		}
		c.log.WithFields(logrus.Fields{"method": method, "attempt": attempt}).WithError(err).Warn("request failed")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.RetryDelay):
		}
	}
	return nil, fmt.Errorf("%s failed after %d attempts: %w", method, c.cfg.Retries, lastErr)
}

func (c *Client) do(ctx context.Context, url string, requestBody []byte) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, 0, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, response.StatusCode, decodeError(response, body)
	}
	return body, response.StatusCode, nil
}
