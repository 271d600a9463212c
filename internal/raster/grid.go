package raster

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Grid describes a north-up pixel grid. OriginX/OriginY is the top-left corner,
// pixel sizes are positive and rows grow southwards.
type Grid struct {
	Width       int     `yaml:"width" json:"width"`
	Height      int     `yaml:"height" json:"height"`
	OriginX     float64 `yaml:"origin_x" json:"origin_x"`
	OriginY     float64 `yaml:"origin_y" json:"origin_y"`
	PixelWidth  float64 `yaml:"pixel_width" json:"pixel_width"`
	PixelHeight float64 `yaml:"pixel_height" json:"pixel_height"`
	CRS         string  `yaml:"crs" json:"crs"`
}

func GridFromGeoTransform(gt [6]float64, width, height int, crs string) Grid {
	return Grid{
		Width:       width,
		Height:      height,
		OriginX:     gt[0],
		OriginY:     gt[3],
		PixelWidth:  gt[1],
		PixelHeight: -gt[5],
		CRS:         crs,
	}
}

// GridForBound covers b with square pixels of the given size. The pixel size is
// enlarged when either side would exceed maxDimension pixels.
func GridForBound(b orb.Bound, pixelSize float64, maxDimension int, crs string) Grid {
	width := calculatePixels(b.Max.X()-b.Min.X(), pixelSize)
	height := calculatePixels(b.Max.Y()-b.Min.Y(), pixelSize)
	if maxDimension > 0 && (width > maxDimension || height > maxDimension) {
		factor := math.Max(float64(width), float64(height)) / float64(maxDimension)
		pixelSize *= factor
		width = calculatePixels(b.Max.X()-b.Min.X(), pixelSize)
		height = calculatePixels(b.Max.Y()-b.Min.Y(), pixelSize)
	}
	return Grid{
		Width:       width,
		Height:      height,
		OriginX:     b.Min.X(),
		OriginY:     b.Max.Y(),
		PixelWidth:  pixelSize,
		PixelHeight: pixelSize,
		CRS:         crs,
	}
}

func calculatePixels(distance, resolution float64) int {
	pixels := int(math.Ceil(distance/resolution - 1e-9))
	if pixels < 1 {
		return 1
	}
	return pixels
}

func (g Grid) GeoTransform() [6]float64 {
	return [6]float64{g.OriginX, g.PixelWidth, 0, g.OriginY, 0, -g.PixelHeight}
}

func (g Grid) Len() int {
	return g.Width * g.Height
}

func (g Grid) Index(x, y int) int {
	return y*g.Width + x
}

// Center returns the coordinates of the centre of pixel (x, y).
func (g Grid) Center(x, y int) orb.Point {
	return orb.Point{
		g.OriginX + g.PixelWidth*(float64(x)+0.5),
		g.OriginY - g.PixelHeight*(float64(y)+0.5),
	}
}

// Locate returns the pixel containing p.
func (g Grid) Locate(p orb.Point) (int, int, bool) {
	col := int(math.Floor((p.X() - g.OriginX) / g.PixelWidth))
	row := int(math.Floor((g.OriginY - p.Y()) / g.PixelHeight))
	if col >= 0 && col < g.Width && row >= 0 && row < g.Height {
		return col, row, true
	}
	return 0, 0, false
}

func (g Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.OriginX, g.OriginY - g.PixelHeight*float64(g.Height)},
		Max: orb.Point{g.OriginX + g.PixelWidth*float64(g.Width), g.OriginY},
	}
}

// CellArea is the area of one pixel in squared CRS units.
func (g Grid) CellArea() float64 {
	return g.PixelWidth * g.PixelHeight
}

func (g Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("grid size must be positive, got %dx%d", g.Width, g.Height)
	}
	if g.PixelWidth <= 0 || g.PixelHeight <= 0 {
		return fmt.Errorf("pixel size must be positive, got %vx%v", g.PixelWidth, g.PixelHeight)
	}
	return nil
}

// EPSGCode parses codes written as "EPSG:32643".
func (g Grid) EPSGCode() (int, error) {
	code, ok := strings.CutPrefix(strings.ToUpper(g.CRS), "EPSG:")
	if !ok {
		return 0, fmt.Errorf("unsupported crs %q", g.CRS)
	}
	return strconv.Atoi(code)
}
