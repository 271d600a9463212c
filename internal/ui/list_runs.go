package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/forest-guardian/lakewatch/internal/properties"
)

// FindReports loads the report of every run under dir, newest first.
// Folders without a readable report.json are skipped.
func FindReports(dir string) ([]*dataset.Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading result folder: %w", err)
	}
	var reports []*dataset.Report
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		report, err := dataset.LoadReport(filepath.Join(dir, entry.Name(), "report.json"))
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// ListRuns handles the UI for viewing previous analysis runs
func ListRuns() {
	dir := filepath.Join(properties.RootPath(), "data", "result")
	reports, err := FindReports(dir)
	if err != nil {
		PrintError(err.Error())
		return
	}
	if len(reports) == 0 {
		PrintWarning("No analysis runs found. Run an analysis first.")
		return
	}

	fmt.Printf("\n%sPrevious runs:%s\n", ColorGreen, ColorReset)
	for i, r := range reports {
		fmt.Printf("%s%d. %s  %s  %v%s\n", ColorGreen, i+1, r.CreatedAt.Format("2006-01-02 15:04"), r.RunID, r.Sections, ColorReset)
	}

	choice, err := ReadInt("Enter the number of the run to show: ", 1, len(reports))
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(Summary(reports[choice-1], dataset.ResultDir(reports[choice-1].RunID)))
}
