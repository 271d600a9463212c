package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/forest-guardian/lakewatch/internal/raster"
)

// CreateLayerImage writes r coloured with s as a PNG and returns the image.
func CreateLayerImage(r *raster.Raster, s Style, outputPath string) (*image.RGBA, error) {
	img, err := Colorize(r, s)
	if err != nil {
		return nil, err
	}
	if err := savePNG(img, outputPath); err != nil {
		return nil, err
	}
	return img, nil
}

func savePNG(img image.Image, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create result folder: %w", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}
