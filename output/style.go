package output

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/lucasb-eyer/go-colorful"
)

type StyleKind string

const (
	StyleSolid   StyleKind = "solid"
	StyleOutline StyleKind = "outline"
	StyleRamp    StyleKind = "ramp"
)

// Style says how a layer's valid pixels are coloured. Masked pixels are
// always transparent.
type Style struct {
	Kind    StyleKind `json:"kind"`
	Palette []string  `json:"palette"`
	Width   float64   `json:"width,omitempty"`
	Min     float64   `json:"min,omitempty"`
	Max     float64   `json:"max,omitempty"`
}

func Solid(hex string) Style {
	return Style{Kind: StyleSolid, Palette: []string{hex}}
}

func Outline(hex string, width float64) Style {
	return Style{Kind: StyleOutline, Palette: []string{hex}, Width: width}
}

func Ramp(min, max float64, palette ...string) Style {
	return Style{Kind: StyleRamp, Palette: palette, Min: min, Max: max}
}

var namedColors = map[string]string{
	"black": "#000000",
	"white": "#ffffff",
	"red":   "#ff0000",
	"green": "#008000",
	"blue":  "#0000ff",
}

// ParseColor accepts #rrggbb, rrggbb or a few CSS names.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

func (s Style) colors() ([]colorful.Color, error) {
	if len(s.Palette) == 0 {
		return nil, fmt.Errorf("style %s has an empty palette", s.Kind)
	}
	colors := make([]colorful.Color, len(s.Palette))
	for i, p := range s.Palette {
		c, err := ParseColor(p)
		if err != nil {
			return nil, err
		}
		colors[i] = c
	}
	return colors, nil
}

func normalize(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	norm := (value - min) / (max - min)
	if norm < 0 {
		return 0
	}
	if norm > 1 {
		return 1
	}
	return norm
}

// rampColor interpolates linearly in RGB between evenly spaced palette stops.
func rampColor(colors []colorful.Color, norm float64) colorful.Color {
	if len(colors) == 1 {
		return colors[0]
	}
	pos := norm * float64(len(colors)-1)
	i := int(pos)
	if i >= len(colors)-1 {
		return colors[len(colors)-1]
	}
	return colors[i].BlendRgb(colors[i+1], pos-float64(i)).Clamped()
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Colorize paints r with s onto a transparent canvas of the raster size.
func Colorize(r *raster.Raster, s Style) (*image.RGBA, error) {
	colors, err := s.colors()
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	solid := toRGBA(colors[0])
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			v, ok := r.At(x, y)
			if !ok {
				continue
			}
			if s.Kind == StyleRamp {
				img.SetRGBA(x, y, toRGBA(rampColor(colors, normalize(v, s.Min, s.Max))))
			} else {
				img.SetRGBA(x, y, solid)
			}
		}
	}
	return img, nil
}
