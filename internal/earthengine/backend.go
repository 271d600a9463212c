package earthengine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forest-guardian/lakewatch/internal/raster"
)

var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrTooManyPixels  = errors.New("too many pixels in region")
	ErrBandNotFound   = errors.New("band not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// APIError is a non-success answer from the hosted platform.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("earth engine: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Unwrap maps well known platform failures onto the sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case "NOT_FOUND":
		return ErrAssetNotFound
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION":
		if strings.Contains(strings.ToLower(e.Message), "too many pixels") {
			return ErrTooManyPixels
		}
		return ErrInvalidRequest
	}
	return nil
}

// Backend evaluates expression graphs.
type Backend interface {
	// ComputeValue evaluates v into plain values: float64, string, bool, nil,
	// []any or map[string]any.
	ComputeValue(ctx context.Context, v Valuer) (any, error)
	// ComputePixels renders the first band of img on grid.
	ComputePixels(ctx context.Context, img Image, grid raster.Grid) (*raster.Raster, error)
}

// ComputeNumber evaluates v and expects a number or null.
func ComputeNumber(ctx context.Context, b Backend, v Valuer) (*float64, error) {
	value, err := b.ComputeValue(ctx, v)
	if err != nil {
		return nil, err
	}
	switch n := value.(type) {
	case nil:
		return nil, nil
	case float64:
		return &n, nil
	case int:
		f := float64(n)
		return &f, nil
	case int64:
		f := float64(n)
		return &f, nil
	}
	return nil, fmt.Errorf("expected a number, got %T", value)
}

// Identified is implemented by backends that can name the catalogue they serve.
// Cached results are namespaced by it so one catalogue never answers for another.
type Identified interface {
	Identity() string
}
