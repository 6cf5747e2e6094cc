package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	t0         float64
	tEnd       float64
	dt         float64
	y0         []float64
	runs       int
	seed       uint64
	workers    int
	params     map[string]string
	validate   bool
	stopAbove  float64
	component  int
	noSave     bool
	configFile string
	preset     string
	// sweep
	grid      []string
	objective string
	maximize  bool
	// plot
	showSample bool
	width      int
	height     int
	outPath    string
	bandK      float64
)

// main registers the commands and flags and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sdeem",
		Short:        "Euler–Maruyama ensembles for stochastic differential equations",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("data", ".sdeem", "data directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	viper.SetEnvPrefix("sdeem")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate an ensemble of trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addEnsembleFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run an ensemble for every point of a parameter grid",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepParams,
	}
	addEnsembleFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVarP(&grid, "grid", "g", nil, "grid axis name=v1,v2,... or name=lo:hi:n (repeatable)")
	sweepCmd.Flags().StringVar(&objective, "objective", "mean_error", fmt.Sprintf("score to optimize %v", objectiveNames()))
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize the objective")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the ensemble mean of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&showSample, "sample", false, "also plot the stored sample trajectory")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 12, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	plotFileCmd := &cobra.Command{
		Use:   "plot-file [run_id]",
		Short: "render a run to an image file (svg, png, pdf, ...)",
		Args:  cobra.ExactArgs(1),
		RunE:  plotFile,
	}
	plotFileCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file; the extension selects the format")
	plotFileCmd.Flags().BoolVar(&showSample, "sample", false, "render the stored sample trajectory instead of the mean")
	plotFileCmd.Flags().Float64Var(&bandK, "band", 1, "band half-width in standard deviations")
	_ = plotFileCmd.MarkFlagRequired("output")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and their default parameters",
		RunE:  listModels,
	}

	rootCmd.AddCommand(runCmd, sweepCmd, listCmd, plotCmd, exportCmd, plotFileCmd, presetsCmd, modelsCmd)
	return rootCmd
}

func addEnsembleFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&t0, "t0", 0.0, "start time")
	cmd.Flags().Float64Var(&tEnd, "time", 1.0, "end time")
	cmd.Flags().Float64Var(&dt, "dt", 0.001, "step size")
	cmd.Flags().Float64SliceVar(&y0, "y0", nil, "initial state (defaults to the model's)")
	cmd.Flags().IntVar(&runs, "runs", 1000, "number of trajectories")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "model parameter name=value")
	cmd.Flags().BoolVar(&validate, "validate", false, "fail on NaN or Inf states")
	cmd.Flags().Float64Var(&stopAbove, "stop-above", 0, "stop a run once |y| exceeds this bound")
	cmd.Flags().IntVar(&component, "component", 0, "state component to summarize")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	allow := level.AllowInfo()
	if viper.GetBool("verbose") {
		allow = level.AllowDebug()
	}
	return level.NewFilter(logger, allow)
}

func dataDir() string {
	return viper.GetString("data")
}
