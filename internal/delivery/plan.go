package delivery

import (
	"fmt"
	"strconv"

	"github.com/forest-guardian/lakewatch/internal/buildings"
	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/forest-guardian/lakewatch/internal/delta"
	ee "github.com/forest-guardian/lakewatch/internal/earthengine"
	"github.com/forest-guardian/lakewatch/internal/lakes"
	"github.com/forest-guardian/lakewatch/internal/landcover"
	"github.com/forest-guardian/lakewatch/internal/sentinel"
	"github.com/forest-guardian/lakewatch/output"
)

// LayerSpec is a lazily defined map layer.
type LayerSpec struct {
	Section string
	Name    string
	Image   ee.Image
	Style   output.Style
	// Export writes the raster as GeoTIFF when enabled in the config.
	Export bool
	// AutoRange stretches a ramp over the rendered values.
	AutoRange bool
}

// MetricSpec is one area to reduce, with the caption it is printed under.
type MetricSpec struct {
	Section  string
	Name     string
	Label    string
	Region   string
	Caption  string
	Mask     ee.Image
	Geometry ee.Geometry
}

type SectionPlan struct {
	Name    string
	Layers  []LayerSpec
	Metrics []MetricSpec
	Notes   []string
}

// Plan is the full set of lazy layers and metrics of one run. Building it
// touches no backend.
type Plan struct {
	Regions  lakes.Regions
	Base     []LayerSpec
	Sections []SectionPlan
}

// Layers returns every layer in drawing order.
func (p *Plan) Layers() []LayerSpec {
	layers := append([]LayerSpec{}, p.Base...)
	for _, s := range p.Sections {
		layers = append(layers, s.Layers...)
	}
	return layers
}

func (p *Plan) Metrics() []MetricSpec {
	var metrics []MetricSpec
	for _, s := range p.Sections {
		metrics = append(metrics, s.Metrics...)
	}
	return metrics
}

// selfMasked hides zero pixels, leaving only the class (or non-zero change).
func selfMasked(img ee.Image) ee.Image {
	return img.UpdateMask(img)
}

func bufferName(meters float64) string {
	if meters >= 1000 {
		return strconv.FormatFloat(meters/1000, 'f', -1, 64) + " km Buffer"
	}
	return strconv.FormatFloat(meters, 'f', -1, 64) + " m Buffer"
}

// NewPlan builds the layers and metrics of the requested sections, in the
// fixed section order.
func NewPlan(cfg *config.Config, sections []string) (*Plan, error) {
	regions := lakes.Load(cfg.Assets.Lakes, cfg.BufferMeters)
	p := &Plan{Regions: regions}

	if cfg.Render.Terrain {
		p.Base = append(p.Base, LayerSpec{
			Name:      "Terrain (SRTM)",
			Image:     ee.LoadImage(cfg.Assets.Elevation).Select("elevation").Clip(regions.BufferGeometry()),
			Style:     output.Ramp(0, 1, "#000000", "#ffffff"),
			AutoRange: true,
		})
	}
	p.Base = append(p.Base,
		LayerSpec{Name: "Lake Boundary", Image: regions.LakeOutline(), Style: output.Outline("black", 2)},
		LayerSpec{Name: bufferName(cfg.BufferMeters), Image: regions.BufferOutline(), Style: output.Outline("red", 2)},
	)

	want := map[string]bool{}
	for _, s := range sections {
		want[s] = true
	}
	builders := map[string]func(*config.Config, lakes.Regions) (SectionPlan, error){
		config.SectionEncroachment: encroachmentSection,
		config.SectionWater:        waterSection,
		config.SectionVegetation:   vegetationSection,
	}
	for _, name := range config.AllSections {
		if !want[name] {
			continue
		}
		section, err := builders[name](cfg, regions)
		if err != nil {
			return nil, fmt.Errorf("failed to plan %s: %w", name, err)
		}
		p.Sections = append(p.Sections, section)
		delete(want, name)
	}
	for name := range want {
		return nil, fmt.Errorf("unknown section %q", name)
	}
	return p, nil
}

type periodImages struct {
	earlier, later ee.Image
}

func builtUpMasks(cfg *config.Config, region ee.Geometry) (periodImages, error) {
	var out periodImages
	for _, p := range []struct {
		period config.Period
		dst    *ee.Image
	}{
		{cfg.Monthly.Earlier, &out.earlier},
		{cfg.Monthly.Later, &out.later},
	} {
		req, err := sentinel.NewRequest(cfg.Assets.Sentinel2, region, p.period)
		if err != nil {
			return out, err
		}
		*p.dst = sentinel.BuiltUpMask(sentinel.BuiltUpComposite(req, cfg.BuiltUp), cfg.BuiltUp)
	}
	return out, nil
}

func vegetationMasks(cfg *config.Config, region ee.Geometry) (periodImages, error) {
	var out periodImages
	for _, p := range []struct {
		period config.Period
		dst    *ee.Image
	}{
		{cfg.Vegetation.Earlier, &out.earlier},
		{cfg.Vegetation.Later, &out.later},
	} {
		req, err := sentinel.NewRequest(cfg.Assets.Sentinel2, region, p.period)
		if err != nil {
			return out, err
		}
		*p.dst = sentinel.VegetationMask(sentinel.VegetationComposite(req, cfg.Greenness), cfg.Greenness)
	}
	return out, nil
}

func landcoverLabels(cfg *config.Config, region ee.Geometry) (periodImages, error) {
	var out periodImages
	for _, p := range []struct {
		period config.Period
		dst    *ee.Image
	}{
		{cfg.Monthly.Earlier, &out.earlier},
		{cfg.Monthly.Later, &out.later},
	} {
		req, err := sentinel.NewRequest(cfg.Assets.DynamicWorld, region, p.period)
		if err != nil {
			return out, err
		}
		*p.dst = landcover.Labels(req, cfg.Landcover)
	}
	return out, nil
}

func encroachmentSection(cfg *config.Config, regions lakes.Regions) (SectionPlan, error) {
	s := SectionPlan{Name: config.SectionEncroachment}
	buffer := regions.BufferGeometry()
	earlier, later := cfg.Monthly.EarlierLabel, cfg.Monthly.LaterLabel

	ndbi, err := builtUpMasks(cfg, buffer)
	if err != nil {
		return s, err
	}
	labels, err := landcoverLabels(cfg, buffer)
	if err != nil {
		return s, err
	}
	builtEarlier := landcover.BuiltMask(labels.earlier, cfg.Landcover)
	builtLater := landcover.BuiltMask(labels.later, cfg.Landcover)
	// One raster serves both periods.
	dumping := buildings.DumpingZones(cfg.Assets.Buildings, buffer, cfg.Dumping)

	builtChange := delta.Change(builtLater, builtEarlier)
	ndbiChange := delta.Change(ndbi.later, ndbi.earlier)

	s.Layers = []LayerSpec{
		{Name: "NDBI Construction " + earlier, Image: selfMasked(ndbi.earlier), Style: output.Solid("#8B4513")},
		{Name: "Dynamic World Built-up " + earlier, Image: selfMasked(builtEarlier), Style: output.Solid("#FFA500")},
		{Name: "Dumping Zones " + earlier, Image: selfMasked(dumping), Style: output.Solid("#FF0000")},
		{Name: "NDBI Construction " + later, Image: selfMasked(ndbi.later), Style: output.Solid("#8B4513")},
		{Name: "Dynamic World Built-up " + later, Image: selfMasked(builtLater), Style: output.Solid("#FFA500")},
		{Name: "Dumping Zones " + later, Image: selfMasked(dumping), Style: output.Solid("#FF0000")},
		{Name: "Built-up Gain (DW)", Image: selfMasked(builtChange), Style: output.Solid("#FF8C00"), Export: true},
		{Name: "Construction Gain (NDBI)", Image: selfMasked(ndbiChange), Style: output.Solid("#A0522D"), Export: true},
	}
	s.Metrics = []MetricSpec{
		{
			Name:     "encroachment_gain",
			Label:    later,
			Region:   dataset.RegionBuffer,
			Caption:  fmt.Sprintf("Encroachment (NDBI Gain) Area %s (km²):", later),
			Mask:     delta.Encroachment(ndbi.later, ndbiChange),
			Geometry: buffer,
		},
		{
			Name:     "dumping_area",
			Label:    later,
			Region:   dataset.RegionBuffer,
			Caption:  fmt.Sprintf("Dumping Area (Open Buildings Buffer) %s (km²):", later),
			Mask:     dumping,
			Geometry: buffer,
		},
	}
	s.Notes = []string{fmt.Sprintf(
		"Dumping zones come from undated building footprints, so the %s and %s dumping layers are identical.",
		earlier, later)}
	return s.withSection(), nil
}

func waterSection(cfg *config.Config, regions lakes.Regions) (SectionPlan, error) {
	s := SectionPlan{Name: config.SectionWater}
	earlier, later := cfg.Monthly.EarlierLabel, cfg.Monthly.LaterLabel

	labels, err := landcoverLabels(cfg, regions.BufferGeometry())
	if err != nil {
		return s, err
	}
	waterEarlier := landcover.WaterMask(labels.earlier, cfg.Landcover)
	waterLater := landcover.WaterMask(labels.later, cfg.Landcover)
	change := delta.Change(waterLater, waterEarlier)

	s.Layers = []LayerSpec{
		{Name: "Dynamic World Water " + earlier, Image: selfMasked(waterEarlier), Style: output.Solid("#0000FF")},
		{Name: "Dynamic World Water " + later, Image: selfMasked(waterLater), Style: output.Solid("#00FFFF")},
		{
			Name:   fmt.Sprintf("Water Change %s–%s", earlier, later),
			Image:  change,
			Style:  output.Ramp(-1, 1, "#FF0000", "white", "#0000FF"),
			Export: true,
		},
	}
	lake := regions.LakeGeometry()
	for _, p := range []struct {
		label string
		mask  ee.Image
	}{{earlier, waterEarlier}, {later, waterLater}} {
		s.Metrics = append(s.Metrics, MetricSpec{
			Name:     "water_area",
			Label:    p.label,
			Region:   dataset.RegionLake,
			Caption:  fmt.Sprintf("Water Area %s (km²):", p.label),
			Mask:     p.mask,
			Geometry: lake,
		})
	}
	return s.withSection(), nil
}

func vegetationSection(cfg *config.Config, regions lakes.Regions) (SectionPlan, error) {
	s := SectionPlan{Name: config.SectionVegetation}
	earlier, later := cfg.Vegetation.EarlierLabel, cfg.Vegetation.LaterLabel

	veg, err := vegetationMasks(cfg, regions.BufferGeometry())
	if err != nil {
		return s, err
	}
	change := delta.Change(veg.later, veg.earlier)

	s.Layers = []LayerSpec{
		{Name: "Vegetation " + earlier, Image: selfMasked(veg.earlier), Style: output.Solid("#00FF7F")},
		{Name: "Vegetation " + later, Image: selfMasked(veg.later), Style: output.Solid("#228B22")},
		{
			Name:   "Vegetation Change (Loss/Gain)",
			Image:  change,
			Style:  output.Ramp(-1, 1, "#FF1493", "white", "#00FF00"),
			Export: true,
		},
	}
	lake := regions.LakeGeometry()
	for _, p := range []struct {
		label string
		mask  ee.Image
	}{{earlier, veg.earlier}, {later, veg.later}} {
		s.Metrics = append(s.Metrics, MetricSpec{
			Name:     "vegetation_area",
			Label:    p.label,
			Region:   dataset.RegionLake,
			Caption:  fmt.Sprintf("Vegetation Area (%s) km²:", p.label),
			Mask:     p.mask,
			Geometry: lake,
		})
	}
	return s.withSection(), nil
}

func (s SectionPlan) withSection() SectionPlan {
	for i := range s.Layers {
		s.Layers[i].Section = s.Name
	}
	for i := range s.Metrics {
		s.Metrics[i].Section = s.Name
	}
	return s
}
