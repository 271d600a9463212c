package output

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
)

// MapLayer is one coloured layer of the composite map, in drawing order.
type MapLayer struct {
	Name  string
	Style Style
	Image *image.RGBA
}

const (
	minMapWidth   = 600
	legendSpacing = 20
	legendSwatch  = 15
	legendPadding = 10
)

// CreateMapImage stacks the layers on a white background, upscaled to a
// readable size, with a legend below, and saves it as PNG.
func CreateMapImage(layers []MapLayer, title, outputPath string) error {
	if len(layers) == 0 {
		return fmt.Errorf("no layers provided")
	}
	bounds := layers[0].Image.Bounds()
	scale := int(math.Max(1, math.Ceil(float64(minMapWidth)/float64(bounds.Dx()))))
	width := bounds.Dx() * scale
	height := bounds.Dy() * scale

	titleHeight := 0
	if title != "" {
		titleHeight = 30
	}
	legendHeight := 2*legendPadding + len(layers)*legendSpacing
	dc := gg.NewContext(width, titleHeight+height+legendHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if title != "" {
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(title, float64(width)/2, float64(titleHeight)/2, 0.5, 0.5)
	}
	for _, l := range layers {
		if l.Image.Bounds() != bounds {
			return fmt.Errorf("layer %q is %v, expected %v", l.Name, l.Image.Bounds(), bounds)
		}
		dc.DrawImage(upscale(l.Image, scale), 0, titleHeight)
	}

	legendY := titleHeight + height + legendPadding
	for i, l := range layers {
		if err := drawLegendItem(dc, l, legendPadding, legendY+i*legendSpacing); err != nil {
			return err
		}
	}
	return savePNG(dc.Image(), outputPath)
}

func drawLegendItem(dc *gg.Context, l MapLayer, x, y int) error {
	colors, err := l.Style.colors()
	if err != nil {
		return fmt.Errorf("layer %q: %w", l.Name, err)
	}
	swatch := float64(legendSwatch)
	fx, fy := float64(x), float64(y)

	switch l.Style.Kind {
	case StyleRamp:
		// A gradient bar three swatches wide.
		steps := 3 * legendSwatch
		for i := 0; i < steps; i++ {
			c := rampColor(colors, float64(i)/float64(steps-1))
			dc.SetRGB(c.R, c.G, c.B)
			dc.DrawRectangle(fx+float64(i), fy, 1, swatch)
			dc.Fill()
		}
		swatch = float64(steps)
	case StyleOutline:
		c := colors[0]
		dc.SetRGB(c.R, c.G, c.B)
		dc.SetLineWidth(math.Max(l.Style.Width, 1))
		dc.DrawRectangle(fx+1, fy+1, swatch-2, swatch-2)
		dc.Stroke()
	default:
		c := colors[0]
		dc.SetRGB(c.R, c.G, c.B)
		dc.DrawRectangle(fx, fy, swatch, swatch)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(fx, fy, swatch, float64(legendSwatch))
	dc.Stroke()

	label := l.Name
	if l.Style.Kind == StyleRamp {
		label = fmt.Sprintf("%s (%g to %g)", l.Name, l.Style.Min, l.Style.Max)
	}
	dc.DrawStringAnchored(label, fx+swatch+5, fy+float64(legendSwatch)/2, 0, 0.5)
	return nil
}

// upscale enlarges img by an integer factor with nearest neighbour sampling.
func upscale(img *image.RGBA, factor int) *image.RGBA {
	if factor == 1 {
		return img
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			out.SetRGBA(x, y, img.RGBAAt(b.Min.X+x/factor, b.Min.Y+y/factor))
		}
	}
	return out
}
