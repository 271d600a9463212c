// Package delivery runs the lake analysis end to end: it plans the lazy
// layers and metrics, evaluates them on a backend, prints the area lines and
// writes the run outputs.
package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/forest-guardian/lakewatch/internal/cache"
	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/dataset"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/lakes"
	"github.com/forest-guardian/lakewatch/internal/weather"
	"github.com/forest-guardian/lakewatch/internal/zonal"
	"github.com/forest-guardian/lakewatch/output"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Deps struct {
	Backend ee.Backend
	// BackendName tags the report. Cache entries are namespaced by the
	// backend identity when it has one.
	BackendName string
	// Demo marks the built-in synthetic catalogue. Its areas are labelled as such.
	Demo   bool
	Config *config.Config
	Log    logrus.FieldLogger
	// Out receives the area lines. Defaults to stdout.
	Out       io.Writer
	AreaCache cache.Service[zonal.Result]
	// Weather, when set and enabled in the config, adds precipitation context.
	Weather *weather.Client
}

type Options struct {
	// Sections defaults to the configured ones.
	Sections []string
	RunID    string
	// OutDir defaults to data/result/<run id>.
	OutDir     string
	SkipRender bool
	Progress   bool
}

const (
	areasFile   = "areas.csv"
	reportFile  = "report.json"
	geojsonFile = "lakes.geojson"
	mapFile     = "map.png"
	layersDir   = "layers"

	demoNotice = "Demo catalogue: synthetic imagery, these areas are not measurements of a real lake"
)

// Run executes the requested sections in order and stops at the first error.
func Run(ctx context.Context, deps Deps, opts Options) (*dataset.Report, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Backend == nil {
		return nil, fmt.Errorf("no backend configured")
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}

	sections := opts.Sections
	if len(sections) == 0 {
		sections = cfg.Sections
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.OutDir == "" {
		opts.OutDir = dataset.ResultDir(opts.RunID)
	}
	log := deps.Log.WithFields(logrus.Fields{"run_id": opts.RunID, "backend": deps.BackendName})

	plan, err := NewPlan(cfg, sections)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create result folder: %w", err)
	}

	report := dataset.NewReport(opts.RunID, deps.BackendName, sections)
	agg := &zonal.Aggregator{
		Backend:   deps.Backend,
		Namespace: cacheNamespace(deps),
		Cache:     deps.AreaCache,
		Log:       log,
	}

	if deps.Demo {
		log.Warn(demoNotice)
		fmt.Fprintln(deps.Out, demoNotice)
		report.AddNote("%s", demoNotice)
	}

	log.WithField("sections", sections).Info("starting lake analysis")
	for _, section := range plan.Sections {
		sectionLog := log.WithField("section", section.Name)
		sectionLog.Info("computing areas")

		metrics, err := computeMetrics(ctx, agg, section.Metrics, cfg.Zonal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", section.Name, err)
		}
		for _, m := range metrics {
			report.AddMetric(m)
			fmt.Fprintln(deps.Out, m.Line())
		}
		for _, note := range section.Notes {
			sectionLog.Warn(note)
			report.AddNote("%s", note)
		}
		if section.Name == config.SectionWater {
			addPrecipitation(ctx, deps, cfg, plan.Regions, report, sectionLog)
		}
	}

	grid, err := lakeGrid(ctx, deps.Backend, plan.Regions, cfg.Render)
	if err != nil {
		return nil, err
	}

	if cfg.Render.Enabled && !opts.SkipRender {
		layers, err := renderLayers(ctx, deps.Backend, plan.Layers(), grid, cfg.Render, opts, log)
		if err != nil {
			return nil, err
		}
		mapLayers := make([]output.MapLayer, len(layers))
		for i, l := range layers {
			report.AddLayer(l.info)
			mapLayers[i] = output.MapLayer{Name: l.info.Name, Style: l.style, Image: l.image}
		}
		title := fmt.Sprintf("Lake change %s vs %s", cfg.Monthly.EarlierLabel, cfg.Monthly.LaterLabel)
		if err := output.CreateMapImage(mapLayers, title, filepath.Join(opts.OutDir, mapFile)); err != nil {
			return nil, err
		}
	}

	features, err := lakes.Features(ctx, deps.Backend, plan.Regions)
	if err != nil {
		return nil, err
	}
	footprint, err := reprojectBound(grid.Bound(), grid.CRS, geometryCRS(deps.Backend))
	if err != nil {
		return nil, err
	}
	if err := output.CreateGeoJSON(features, footprint, report, filepath.Join(opts.OutDir, geojsonFile)); err != nil {
		return nil, err
	}
	if len(report.Metrics) > 0 {
		if err := dataset.SaveAreas(filepath.Join(opts.OutDir, areasFile), report.AreaRows()); err != nil {
			return nil, err
		}
	}
	if err := dataset.SaveReport(filepath.Join(opts.OutDir, reportFile), report); err != nil {
		return nil, err
	}

	log.WithField("out", opts.OutDir).Info("lake analysis finished")
	return report, nil
}

// computeMetrics issues the area requests of one section concurrently and
// returns them in plan order.
func computeMetrics(ctx context.Context, agg *zonal.Aggregator, specs []MetricSpec, params config.Zonal) ([]dataset.Metric, error) {
	metrics := make([]dataset.Metric, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(params.Parallel, 1))
	for i, spec := range specs {
		g.Go(func() error {
			res, err := agg.Area(gctx, zonal.NewRequest(spec.Caption, spec.Mask, spec.Geometry, params))
			if err != nil {
				return err
			}
			metrics[i] = dataset.Metric{
				Section: spec.Section,
				Name:    spec.Name,
				Label:   spec.Label,
				Region:  spec.Region,
				Caption: spec.Caption,
				Km2:     res.Km2,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return metrics, nil
}

func cacheNamespace(deps Deps) string {
	if id, ok := deps.Backend.(ee.Identified); ok && id.Identity() != "" {
		return id.Identity()
	}
	return deps.BackendName
}
