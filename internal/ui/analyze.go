package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/forest-guardian/lakewatch/internal/delivery"
	"github.com/forest-guardian/lakewatch/internal/notification"
)

// RunAnalysis wires the dependencies described by setup, runs the analysis and
// reports the outcome to the configured Discord webhooks.
func RunAnalysis(ctx context.Context, setup delivery.Setup, opts delivery.Options) (*dataset.Report, error) {
	discord := notification.FromEnv()

	report, err := runAnalysis(ctx, setup, opts)
	if err != nil {
		if nerr := discord.Error(context.Background(), err.Error()); nerr != nil {
			PrintError(fmt.Sprintf("Failed to send notification: %s", nerr.Error()))
		}
		return nil, err
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = dataset.ResultDir(report.RunID)
	}
	if nerr := discord.Success(context.Background(), Summary(report, outDir)); nerr != nil {
		PrintError(fmt.Sprintf("Failed to send notification: %s", nerr.Error()))
	}
	return report, nil
}

func runAnalysis(ctx context.Context, setup delivery.Setup, opts delivery.Options) (*dataset.Report, error) {
	deps, err := delivery.NewDeps(ctx, setup)
	if err != nil {
		return nil, err
	}
	return delivery.Run(ctx, deps, opts)
}

// Summary lists the area lines of a run and where its files were written.
func Summary(report *dataset.Report, outDir string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s)\n", report.RunID, report.Backend)
	for _, m := range report.Metrics {
		b.WriteString(m.Line())
		b.WriteString("\n")
	}
	for _, note := range report.Notes {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}
	fmt.Fprintf(&b, "Results located at: %s", outDir)
	return b.String()
}

// AnalyzeLakes handles the UI for running the lake analysis
func AnalyzeLakes(setup delivery.Setup) {
	PrintWarning(fmt.Sprintf("- The analysis runs on the '%s' backend.\n- Results are written to data/result/<run id>.", setup.Backend))

	sections, err := ReadSections()
	if err != nil {
		PrintError(err.Error())
		return
	}
	opts := delivery.Options{
		Sections:   sections,
		SkipRender: !ReadYesNo("Render map layers?"),
		Progress:   true,
	}

	report, err := RunAnalysis(context.Background(), setup, opts)
	if err != nil {
		PrintError(fmt.Sprintf("Error analyzing lakes: %s", err.Error()))
		return
	}
	PrintSuccess(fmt.Sprintf("Successful analysis!\nResults located at: %s", dataset.ResultDir(report.RunID)))
}
