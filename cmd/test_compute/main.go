package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/forest-guardian/lakewatch/internal/delivery"
	"github.com/forest-guardian/lakewatch/internal/lakes"
	"github.com/forest-guardian/lakewatch/internal/landcover"
	"github.com/forest-guardian/lakewatch/internal/properties"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/forest-guardian/lakewatch/internal/sentinel"
	"github.com/forest-guardian/lakewatch/internal/zonal"
	"github.com/sirupsen/logrus"
)

// Computes one water area and downloads one water mask against the live
// Earth Engine REST API, without running the full analysis.
func main() {
	// Hardcoded test parameters - modify these to test different scenarios
	period := config.Period{Start: "2025-06-01", End: "2025-06-30"}
	pixelSize := 30.0

	fmt.Println("=== LakeWatch Test Compute ===")
	fmt.Printf("Period: %s\n", period)
	fmt.Println()

	if err := properties.Load("../../.env", "../.env", ".env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		fmt.Println("Make sure you have set the required environment variables:")
		fmt.Println("- EE_PROJECT")
		fmt.Println("- EE_SERVICE_ACCOUNT_KEY (or EE_CLIENT_ID, EE_CLIENT_SECRET, EE_TOKEN_URL)")
		fmt.Println("- ROOT_PATH")
		fmt.Println()
	}

	ctx := context.Background()
	cfg := config.Default()
	backend, err := delivery.OpenBackend(ctx, delivery.BackendREST, "", cfg, logrus.StandardLogger())
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}
	fmt.Println("✓ Backend ready")

	regions := lakes.Load(cfg.Assets.Lakes, cfg.BufferMeters)
	extent, err := lakes.Extent(ctx, backend, regions)
	if err != nil {
		log.Fatalf("Failed to get lake extent: %v", err)
	}
	fmt.Printf("✓ Lake extent: %.6f, %.6f, %.6f, %.6f\n", extent.Min.X(), extent.Min.Y(), extent.Max.X(), extent.Max.Y())

	req, err := sentinel.NewRequest(cfg.Assets.DynamicWorld, regions.BufferGeometry(), period)
	if err != nil {
		log.Fatalf("Invalid period: %v", err)
	}
	water := landcover.WaterMask(landcover.Labels(req, cfg.Landcover), cfg.Landcover)

	area, err := zonal.Area(ctx, backend, zonal.NewRequest("water", water, regions.LakeGeometry(), cfg.Zonal))
	if err != nil {
		log.Fatalf("Failed to compute water area: %v", err)
	}
	fmt.Printf("✓ Water Area %s (km²): %s\n", period, dataset.FormatKm2(area.Km2))

	grid := raster.GridForBound(extent, pixelSize/111000, 512, raster.WGS84)
	pixels, err := backend.ComputePixels(ctx, water, grid)
	if err != nil {
		log.Fatalf("Failed to download water mask: %v", err)
	}
	fmt.Printf("✓ Water mask: %dx%d, %d valid pixels\n", pixels.Width, pixels.Height, pixels.ValidCount())

	outDir := filepath.Join(properties.RootPath(), "data", "result", "test_compute")
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create output folder: %v", err)
	}
	path := filepath.Join(outDir, "water.tif")
	if err := raster.WriteGeoTIFF(path, pixels, -9999); err != nil {
		log.Fatalf("Failed to write GeoTIFF: %v", err)
	}
	fmt.Printf("\nGeoTIFF saved to: %s\n", path)
	fmt.Println("\n✓ Test completed successfully!")
}
