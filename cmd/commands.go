package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/dataset"
	"github.com/forest-guardian/lakewatch/internal/delivery"
	"github.com/forest-guardian/lakewatch/internal/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	backendName string
	fixturesDir string
	noCache     bool
	verbose     bool

	sections   []string
	outDir     string
	runID      string
	skipRender bool
	progress   bool

	rootCmd = &cobra.Command{
		Use:           "lakewatch",
		Short:         "Measure encroachment, water and vegetation change around lakes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Run the lake analysis and write areas, layers and the map",
		RunE:  runAnalyze,
	}

	menuCmd = &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu",
		Run: func(cmd *cobra.Command, args []string) {
			printBanner()
			ui.ShowMenu(currentSetup())
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the analysis configuration",
	}
	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = ui.DefaultConfigPath()
			}
			if err := config.WriteDefault(path); err != nil {
				return reportError(err)
			}
			ui.PrintSuccess(fmt.Sprintf("Default configuration written to %s", path))
			return nil
		},
	}

	layersCmd = &cobra.Command{
		Use:   "layers",
		Short: "List the map layers and areas a run would produce",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return reportError(err)
			}
			if err := ui.WriteLayers(cmd.OutOrStdout(), cfg, sections); err != nil {
				return reportError(err)
			}
			return nil
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "analysis configuration file (YAML)")
	flags.StringVarP(&backendName, "backend", "b", delivery.BackendEmulator, "processing backend: rest or emulator")
	flags.StringVar(&fixturesDir, "fixtures", "", "emulator fixture directory (defaults to the demo catalogue)")
	flags.BoolVar(&noCache, "no-cache", false, "do not read or write cached areas and weather")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	analyzeCmd.Flags().StringSliceVarP(&sections, "section", "s", nil, "sections to run: encroachment, water, vegetation (default from config)")
	analyzeCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default data/result/<run id>)")
	analyzeCmd.Flags().StringVar(&runID, "run-id", "", "run identifier (default random UUID)")
	analyzeCmd.Flags().BoolVar(&skipRender, "skip-render", false, "compute areas only")
	analyzeCmd.Flags().BoolVar(&progress, "progress", true, "show a progress bar while rendering")

	layersCmd.Flags().StringSliceVarP(&sections, "section", "s", nil, "sections to list (default from config)")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(analyzeCmd, menuCmd, configCmd, layersCmd)
}

func currentSetup() delivery.Setup {
	return delivery.Setup{
		Backend:    backendName,
		Fixtures:   fixturesDir,
		ConfigPath: configPath,
		NoCache:    noCache,
		Log:        logrus.StandardLogger(),
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	selected, err := ui.ParseSections(strings.Join(sections, ","))
	if err != nil {
		return reportError(err)
	}
	opts := delivery.Options{
		Sections:   selected,
		RunID:      runID,
		OutDir:     outDir,
		SkipRender: skipRender,
		Progress:   progress,
	}
	report, err := ui.RunAnalysis(ctx, currentSetup(), opts)
	if err != nil {
		return reportError(err)
	}

	resultDir := outDir
	if resultDir == "" {
		resultDir = dataset.ResultDir(report.RunID)
	}
	ui.PrintSuccess(fmt.Sprintf("Successful analysis!\nResults located at: %s", resultDir))
	return nil
}

func reportError(err error) error {
	ui.PrintError(err.Error())
	return err
}
