package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/forest-guardian/lakewatch/internal/properties"
	"github.com/gocarina/gocsv"
)

type AreaRow struct {
	RunID   string `csv:"run_id"`
	Section string `csv:"section"`
	Name    string `csv:"name"`
	Label   string `csv:"label"`
	Region  string `csv:"region"`
	Km2     Km2    `csv:"km2"`
}

// Km2 is an optional area written as an empty CSV cell when absent.
type Km2 struct {
	Value *float64
}

func (k Km2) MarshalCSV() (string, error) {
	if k.Value == nil {
		return "", nil
	}
	return strconv.FormatFloat(*k.Value, 'f', -1, 64), nil
}

func (k *Km2) UnmarshalCSV(s string) error {
	if s == "" {
		k.Value = nil
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid area %q: %w", s, err)
	}
	k.Value = &v
	return nil
}

// ResultDir is data/result/<runID> under the root path.
func ResultDir(runID string) string {
	return filepath.Join(properties.RootPath(), "data", "result", runID)
}

func SaveAreas(path string, rows []AreaRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no area rows to save")
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create areas file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to save areas to file: %w", err)
	}
	return nil
}

func LoadAreas(path string) ([]AreaRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open areas file: %w", err)
	}
	defer file.Close()

	var rows []AreaRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to read areas: %w", err)
	}
	return rows, nil
}

func SaveReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
