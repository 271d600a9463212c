package delivery

import (
	"context"
	"fmt"

	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/forest-guardian/lakewatch/internal/lakes"
	"github.com/forest-guardian/lakewatch/internal/raster"
	"github.com/forest-guardian/lakewatch/internal/weather"
	"github.com/sirupsen/logrus"
)

// addPrecipitation prints rain totals for both water windows at the lake
// centroid. Failures are logged and noted; they never fail the run.
func addPrecipitation(ctx context.Context, deps Deps, cfg *config.Config, regions lakes.Regions, report *dataset.Report, log logrus.FieldLogger) {
	if deps.Weather == nil || !cfg.Context.Weather.Enabled {
		return
	}
	if err := precipitation(ctx, deps, cfg, regions, report); err != nil {
		log.WithError(err).Warn("precipitation context unavailable")
		report.AddNote("Precipitation context unavailable: %v", err)
	}
}

func precipitation(ctx context.Context, deps Deps, cfg *config.Config, regions lakes.Regions, report *dataset.Report) error {
	y, x, err := lakes.Centroid(ctx, deps.Backend, regions)
	if err != nil {
		return err
	}
	lon, lat, err := raster.ToLonLat(geometryCRS(deps.Backend), x, y)
	if err != nil {
		return err
	}

	for _, p := range []struct {
		label  string
		period config.Period
	}{
		{cfg.Monthly.EarlierLabel, cfg.Monthly.Earlier},
		{cfg.Monthly.LaterLabel, cfg.Monthly.Later},
	} {
		start, end, err := p.period.Range()
		if err != nil {
			return err
		}
		series, err := deps.Weather.FetchPrecipitation(ctx, lat, lon, start, end)
		if err != nil {
			return err
		}
		sum := weather.Summarize(series)
		report.Precipitation = append(report.Precipitation, dataset.Precipitation{
			Label:     p.label,
			Start:     p.period.Start,
			End:       p.period.End,
			TotalMm:   sum.TotalMm,
			WetDays:   sum.WetDays,
			Latitude:  lat,
			Longitude: lon,
		})
		fmt.Fprintf(deps.Out, "Precipitation %s (mm): %.1f over %d wet days\n", p.label, sum.TotalMm, sum.WetDays)
	}
	return nil
}
