package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/LAPKB/ode-solvers/internal/config"
	"github.com/LAPKB/ode-solvers/internal/export"
	"github.com/LAPKB/ode-solvers/internal/models"
	"github.com/LAPKB/ode-solvers/internal/storage"
	"github.com/LAPKB/ode-solvers/internal/viz"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tRUNS\tSPAN\tDT\tFINAL MEAN")

	for _, run := range runs {
		finalMean := "-"
		if run.Summary != nil {
			finalMean = fmt.Sprintf("%.6f", run.Summary.Final.Mean)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t[%g, %g]\t%g\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Runs,
			run.T0,
			run.TEnd,
			run.Dt,
			finalMean,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir())
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Block(meta.ID, []viz.Field{
		viz.F("model", "%s %v", meta.Model, meta.Params),
		viz.F("runs", "%d", meta.Runs),
		viz.F("span", "[%g, %g] step %g", meta.T0, meta.TEnd, meta.Dt),
	}))
	fmt.Fprintln(out)

	if meta.Summary != nil {
		sum, err := st.LoadMean(runID)
		if err != nil {
			return err
		}
		sum.Component = meta.Summary.Component
		sum.Runs = meta.Summary.Runs
		if len(sum.Mean) == 0 {
			return errors.New("no data to plot")
		}
		fmt.Fprintln(out, viz.PlotSummary(sum, width, height))
		fmt.Fprintln(out)
	}

	if showSample || meta.Summary == nil {
		tr, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		if len(tr.Y) == 0 {
			return errors.New("no data to plot")
		}
		for c := range tr.Y[0] {
			fmt.Fprintln(out, viz.PlotTrajectory(tr, c, width, height))
			fmt.Fprintln(out)
		}
	}

	return nil
}

func plotFile(cmd *cobra.Command, args []string) error {
	runID := args[0]

	format, err := export.FormatOf(outPath)
	if err != nil {
		return err
	}

	st := storage.New(dataDir())
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var p *plot.Plot
	if showSample || meta.Summary == nil {
		tr, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		p, err = export.TrajectoryPlot(tr, fmt.Sprintf("%s sample run", meta.Model))
		if err != nil {
			return err
		}
	} else {
		sum, err := st.LoadMean(runID)
		if err != nil {
			return err
		}
		sum.Component = meta.Summary.Component
		p, err = export.SummaryPlot(sum, bandK, fmt.Sprintf("%s, %d runs", meta.Model, meta.Runs))
		if err != nil {
			return err
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "create plot file")
	}
	if err := export.Write(f, p, export.DefaultWidth, export.DefaultHeight, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close plot file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir()).ExportJSON(cmd.OutOrStdout(), args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Fprintf(out, "no presets for model: %s\n", args[0])
		return nil
	}
	sort.Strings(presets)
	fmt.Fprintf(out, "presets for %s:\n", args[0])
	for _, p := range presets {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	registry := models.NewRegistry()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tPARAMS\tY0")
	for _, name := range registry.List() {
		m, err := registry.Get(name, models.Source(0, 0))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%v\t%v\n", name, m.Params(), m.DefaultState())
	}
	return w.Flush()
}
