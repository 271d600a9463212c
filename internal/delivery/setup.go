package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forest-guardian/lakewatch/internal/cache"
	"github.com/forest-guardian/lakewatch/internal/config"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/earthengine/rest"
	"github.com/forest-guardian/lakewatch/internal/emulator"
	"github.com/forest-guardian/lakewatch/internal/properties"
	"github.com/forest-guardian/lakewatch/internal/weather"
	"github.com/forest-guardian/lakewatch/internal/zonal"
	"github.com/sirupsen/logrus"
)

const (
	BackendREST     = "rest"
	BackendEmulator = "emulator"
)

// remoteCacheMaxAge bounds how long platform answers are reused. Hosted
// catalogues keep ingesting scenes; fixture catalogues are keyed by content.
const remoteCacheMaxAge = 24 * time.Hour

// Setup names everything a run needs to be wired from the command line.
type Setup struct {
	Backend string
	// Fixtures is an emulator fixture directory. Empty selects the demo catalogue.
	Fixtures   string
	ConfigPath string
	NoCache    bool
	Log        logrus.FieldLogger
}

// NewDeps loads the configuration and opens the backend, caches and weather client.
func NewDeps(ctx context.Context, s Setup) (Deps, error) {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg, err := config.Load(s.ConfigPath)
	if err != nil {
		return Deps{}, err
	}
	if s.Backend == "" {
		s.Backend = BackendEmulator
	}
	backend, err := OpenBackend(ctx, s.Backend, s.Fixtures, cfg, log)
	if err != nil {
		return Deps{}, err
	}

	deps := Deps{
		Backend:     backend,
		BackendName: s.Backend,
		Demo:        s.Backend == BackendEmulator && s.Fixtures == "",
		Config:      cfg,
		Log:         log,
	}
	if !s.NoCache {
		deps.AreaCache = newAreaCache(s.Backend)
	}
	if cfg.Context.Weather.Enabled {
		deps.Weather = weather.NewClient(cfg.Context.Weather.BaseURL, log)
		if !s.NoCache {
			series := cache.NewFileCache[weather.Series]("weather")
			series.MaxAge = remoteCacheMaxAge
			deps.Weather.Cache = series
		}
	}
	return deps, nil
}

func newAreaCache(backend string) *cache.FileCache[zonal.Result] {
	areas := cache.NewFileCache[zonal.Result]("areas")
	if backend == BackendREST {
		areas.MaxAge = remoteCacheMaxAge
	}
	return areas
}

// OpenBackend returns the Earth Engine REST client or the local emulator.
func OpenBackend(ctx context.Context, name, fixtures string, cfg *config.Config, log logrus.FieldLogger) (ee.Backend, error) {
	switch name {
	case BackendREST:
		if properties.EarthEngineProject() == "" {
			return nil, fmt.Errorf("EE_PROJECT is not set")
		}
		httpClient, err := rest.NewHTTPClient(ctx, rest.Credentials{
			ServiceAccountKey: properties.EarthEngineServiceAccountKey(),
			ClientID:          properties.EarthEngineClientID(),
			ClientSecret:      properties.EarthEngineClientSecret(),
			TokenURL:          properties.EarthEngineTokenURL(),
		})
		if err != nil {
			return nil, err
		}
		tempDir := filepath.Join(properties.RootPath(), "data", "tmp")
		if err := os.MkdirAll(tempDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create temp folder: %w", err)
		}
		return rest.New(rest.Config{
			BaseURL: properties.EarthEngineURL(),
			Project: properties.EarthEngineProject(),
			NoData:  geoTIFFNoData,
			TempDir: tempDir,
		}, httpClient, log), nil
	case BackendEmulator:
		fx, err := fixtureCatalogue(fixtures, cfg.Assets)
		if err != nil {
			return nil, err
		}
		b, err := emulator.New(fx, log)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown backend %q, expected %s or %s", name, BackendREST, BackendEmulator)
}

func fixtureCatalogue(dir string, assets config.Assets) (*emulator.Fixtures, error) {
	if dir != "" {
		return emulator.LoadFixtures(dir)
	}
	return emulator.Demo(emulator.DemoAssets{
		Lakes:        assets.Lakes,
		Sentinel2:    assets.Sentinel2,
		DynamicWorld: assets.DynamicWorld,
		Buildings:    assets.Buildings,
		Elevation:    assets.Elevation,
	}), nil
}
