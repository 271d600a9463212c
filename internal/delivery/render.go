package delivery

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/dataset"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/lakes"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/forest-guardian/lakewatch/output"
	"github.com/gammazero/workerpool"
	"github.com/paulmach/orb"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

const (
	metersPerDegree = 111_000
	geoTIFFNoData   = -9999
)

// gridded backends compute on a fixed native grid.
type gridded interface {
	Grid() raster.Grid
}

// renderCRS is the configured CRS, else the CRS geometries come back in.
func renderCRS(params config.Render, backend ee.Backend) string {
	if params.CRS != "" {
		return params.CRS
	}
	return geometryCRS(backend)
}

// geometryCRS is the CRS lake geometries come back in: the native grid of a
// gridded backend, else WGS84.
func geometryCRS(backend ee.Backend) string {
	if g, ok := backend.(gridded); ok {
		return g.Grid().CRS
	}
	return raster.WGS84
}

// reprojectBound moves b between CRSs, leaving it alone when they match.
func reprojectBound(b orb.Bound, from, to string) (orb.Bound, error) {
	if strings.EqualFold(from, to) {
		return b, nil
	}
	out, err := raster.TransformBound(from, to, b)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("failed to reproject extent from %s to %s: %w", from, to, err)
	}
	return out, nil
}

// lakeGrid lays the render grid over the buffered lakes.
func lakeGrid(ctx context.Context, backend ee.Backend, regions lakes.Regions, params config.Render) (raster.Grid, error) {
	extent, err := lakes.Extent(ctx, backend, regions)
	if err != nil {
		return raster.Grid{}, err
	}
	crs := renderCRS(params, backend)
	extent, err = reprojectBound(extent, geometryCRS(backend), crs)
	if err != nil {
		return raster.Grid{}, err
	}
	return renderGrid(extent, params, crs), nil
}

func renderGrid(extent orb.Bound, params config.Render, crs string) raster.Grid {
	size := params.PixelSize
	if strings.EqualFold(crs, raster.WGS84) {
		size /= metersPerDegree
	}
	return raster.GridForBound(extent, size, params.MaxDimension, crs)
}

type renderedLayer struct {
	info  dataset.Layer
	style output.Style
	image *image.RGBA
}

// renderLayers downloads and colours every layer on a bounded worker pool.
// The first failure cancels the remaining downloads.
func renderLayers(ctx context.Context, backend ee.Backend, specs []LayerSpec, grid raster.Grid, params config.Render, opts Options, log logrus.FieldLogger) ([]renderedLayer, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		results     = make([]renderedLayer, len(specs))
		errChan     = make(chan error, 1)
		stop        sync.Once
		mu          sync.Mutex
		progressBar *progressbar.ProgressBar
	)
	if opts.Progress {
		progressBar = progressbar.Default(int64(len(specs)), "Rendering layers")
	} else {
		progressBar = progressbar.DefaultSilent(int64(len(specs)), "Rendering layers")
	}

	wp := workerpool.New(max(params.Workers, 1))
	for i, spec := range specs {
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			layer, err := renderLayer(ctx, backend, i, spec, grid, params, opts.OutDir)
			if err != nil {
				stop.Do(func() {
					errChan <- fmt.Errorf("failed to render %q: %w", spec.Name, err)
					cancel()
				})
				return
			}
			results[i] = layer
			log.WithField("layer", spec.Name).Debug("layer rendered")

			mu.Lock()
			progressBar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func renderLayer(ctx context.Context, backend ee.Backend, index int, spec LayerSpec, grid raster.Grid, params config.Render, outDir string) (renderedLayer, error) {
	r, err := backend.ComputePixels(ctx, spec.Image, grid)
	if err != nil {
		return renderedLayer{}, err
	}

	style := spec.Style
	if spec.AutoRange {
		style.Min, style.Max = valueRange(r)
	}

	base := fmt.Sprintf("%02d_%s", index, slug(spec.Name))
	file := filepath.Join(layersDir, base+".png")
	img, err := output.CreateLayerImage(r, style, filepath.Join(outDir, file))
	if err != nil {
		return renderedLayer{}, err
	}

	info := dataset.Layer{Section: spec.Section, Name: spec.Name, File: file}
	if spec.Export && params.GeoTIFF {
		tif := filepath.Join(layersDir, base+".tif")
		if err := raster.WriteGeoTIFF(filepath.Join(outDir, tif), r, geoTIFFNoData); err != nil {
			return renderedLayer{}, err
		}
		info.GeoTIFF = tif
	}
	return renderedLayer{info: info, style: style, image: img}, nil
}

func valueRange(r *raster.Raster) (float64, float64) {
	var lo, hi float64
	first := true
	for i, ok := range r.Valid {
		if !ok {
			continue
		}
		v := r.Values[i]
		if first || v < lo {
			lo = v
		}
		if first || v > hi {
			hi = v
		}
		first = false
	}
	return lo, hi
}

// slug turns a layer name into a file name: "Water Change 2024–2025" becomes
// "water_change_2024_2025".
func slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r < unicode.MaxASCII {
				b.WriteRune(r)
				underscore = false
				continue
			}
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
