package raster

import (
	"fmt"
	"math"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/lakewatch/internal/utils"
)

var registerDrivers sync.Once

func openDataset(path string) (*godal.Dataset, error) {
	registerDrivers.Do(godal.RegisterAll)
	return godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
}

// ReadGeoTIFF reads band 1 of a GeoTIFF. Pixels equal to the band nodata value,
// or to noData when the file declares none, are masked.
func ReadGeoTIFF(path string, crs string, noData float64) (*Raster, error) {
	var (
		r   *Raster
		err error
	)
	utils.ExecuteWithMutex(func() {
		r, err = readGeoTIFF(path, crs, noData)
	})
	return r, err
}

func readGeoTIFF(path string, crs string, noData float64) (*Raster, error) {
	ds, err := openDataset(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	structure := ds.Structure()
	if structure.NBands < 1 {
		return nil, fmt.Errorf("%s has no bands", path)
	}
	geoTransform, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	grid := GridFromGeoTransform(geoTransform, structure.SizeX, structure.SizeY, crs)

	band := ds.Bands()[0]
	if nd, ok := band.NoData(); ok {
		noData = nd
	}
	data := make([]float64, grid.Len())
	if err := band.Read(0, 0, data, grid.Width, grid.Height); err != nil {
		return nil, fmt.Errorf("failed to read raster data: %w", err)
	}

	r := New(grid)
	for i, v := range data {
		if v == noData || math.IsNaN(v) {
			continue
		}
		r.Values[i] = v
		r.Valid[i] = true
	}
	return r, nil
}

// WriteGeoTIFF stores r as a single band Float64 GeoTIFF with masked pixels set to noData.
func WriteGeoTIFF(path string, r *Raster, noData float64) error {
	var err error
	utils.ExecuteWithMutex(func() {
		err = writeGeoTIFF(path, r, noData)
	})
	return err
}

func writeGeoTIFF(path string, r *Raster, noData float64) error {
	registerDrivers.Do(godal.RegisterAll)
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, r.Width, r.Height)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(r.GeoTransform()); err != nil {
		return fmt.Errorf("failed to set GeoTransform: %w", err)
	}
	if code, err := r.EPSGCode(); err == nil {
		sr, err := godal.NewSpatialRefFromEPSG(code)
		if err != nil {
			return fmt.Errorf("failed to build spatial ref for EPSG:%d: %w", code, err)
		}
		defer sr.Close()
		if err := ds.SetSpatialRef(sr); err != nil {
			return fmt.Errorf("failed to set spatial ref: %w", err)
		}
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(noData); err != nil {
		return fmt.Errorf("failed to set nodata: %w", err)
	}
	if err := band.Write(0, 0, r.NoDataFill(noData), r.Width, r.Height); err != nil {
		return fmt.Errorf("failed to write raster data: %w", err)
	}
	return nil
}
