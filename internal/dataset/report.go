// Package dataset holds the results of one analysis run: area metrics,
// rendered layers and notes, and persists them as CSV and JSON.
package dataset

import (
	"fmt"
	"strconv"
	"time"
)

const (
	RegionBuffer = "buffer"
	RegionLake   = "lake"
)

// Metric is one area statistic with the caption it is printed under.
type Metric struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	// Label names the period, e.g. "2025" or "2024–25".
	Label   string   `json:"label"`
	Region  string   `json:"region"`
	Caption string   `json:"caption"`
	Km2     *float64 `json:"km2"`
}

// Line renders the metric as printed to the console, e.g.
// "Water Area 2024 (km²): 0.1963".
func (m Metric) Line() string {
	return m.Caption + " " + FormatKm2(m.Km2)
}

// FormatKm2 prints the shortest exact decimal form; absent values print as null.
func FormatKm2(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

type Layer struct {
	Section string `json:"section,omitempty"`
	Name    string `json:"name"`
	File    string `json:"file,omitempty"`
	GeoTIFF string `json:"geotiff,omitempty"`
}

// Precipitation totals daily rain over one comparison window.
type Precipitation struct {
	Label     string  `json:"label"`
	Start     string  `json:"start"`
	End       string  `json:"end"`
	TotalMm   float64 `json:"total_mm"`
	WetDays   int     `json:"wet_days"`
	// Latitude and Longitude locate the lake centroid the series was fetched for.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Report struct {
	RunID         string          `json:"run_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Backend       string          `json:"backend"`
	Sections      []string        `json:"sections"`
	Metrics       []Metric        `json:"metrics"`
	Layers        []Layer         `json:"layers"`
	Notes         []string        `json:"notes,omitempty"`
	Precipitation []Precipitation `json:"precipitation,omitempty"`
}

func NewReport(runID, backend string, sections []string) *Report {
	return &Report{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Backend:   backend,
		Sections:  append([]string{}, sections...),
		Metrics:   []Metric{},
		Layers:    []Layer{},
	}
}

func (r *Report) AddMetric(m Metric) {
	r.Metrics = append(r.Metrics, m)
}

func (r *Report) AddLayer(l Layer) {
	r.Layers = append(r.Layers, l)
}

func (r *Report) AddNote(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Metric finds a metric by section and name.
func (r *Report) Metric(section, name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Section == section && m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// AreaRows flattens the metrics for areas.csv.
func (r *Report) AreaRows() []AreaRow {
	rows := make([]AreaRow, len(r.Metrics))
	for i, m := range r.Metrics {
		rows[i] = AreaRow{
			RunID:   r.RunID,
			Section: m.Section,
			Name:    m.Name,
			Label:   m.Label,
			Region:  m.Region,
			Km2:     Km2{Value: m.Km2},
		}
	}
	return rows
}
