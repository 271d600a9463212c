package ui

import (
	"fmt"
	"io"

	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/delivery"
)

// WriteLayers prints the layers and metrics a run of the given sections would
// produce, without touching any backend.
func WriteLayers(w io.Writer, cfg *config.Config, sections []string) error {
	if len(sections) == 0 {
		sections = cfg.Sections
	}
	plan, err := delivery.NewPlan(cfg, sections)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "base")
	for _, l := range plan.Base {
		fmt.Fprintf(w, "  - %s\n", l.Name)
	}
	for _, s := range plan.Sections {
		fmt.Fprintln(w, s.Name)
		for _, l := range s.Layers {
			if l.Export {
				fmt.Fprintf(w, "  - %s (export)\n", l.Name)
			} else {
				fmt.Fprintf(w, "  - %s\n", l.Name)
			}
		}
		for _, m := range s.Metrics {
			fmt.Fprintf(w, "  = %s [%s]\n", m.Caption, m.Region)
		}
	}
	return nil
}

// ListLayers handles the UI for viewing the planned layers
func ListLayers(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		PrintError(err.Error())
		return
	}
	fmt.Printf("\n%sPlanned layers and areas:%s\n", ColorGreen, ColorReset)
	if err := WriteLayers(colorWriter{}, cfg, nil); err != nil {
		PrintError(err.Error())
	}
}

type colorWriter struct{}

func (colorWriter) Write(p []byte) (int, error) {
	fmt.Print(ColorGreen + string(p) + ColorReset)
	return len(p), nil
}
