package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/liftmc/internal/export"
	"github.com/san-kum/liftmc/internal/report"
	"github.com/san-kum/liftmc/internal/storage"
)

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.NewWithClock(cfg.DataDir, clock), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
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
	fmt.Fprintln(w, "ID\tTIME\tTRIALS\tMETHOD\tSEED\tMEAN\tSTDDEV")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%.3f\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Trials,
			run.Method,
			run.Seed,
			run.Summary.Mean,
			run.Summary.StdDev,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	return report.Detailed(cmd.OutOrStdout(), meta.Summary, meta.Seed)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	hist, err := st.LoadHistogram(args[0])
	if err != nil {
		return fmt.Errorf("load histogram: %w", err)
	}

	out := cmd.OutOrStdout()
	if hist.Bins() == 0 {
		fmt.Fprintln(out, "no data to plot")
		return nil
	}
	fmt.Fprintln(out, report.HistogramPlot(hist))

	if svgFile != "" {
		if err := export.WriteFile(svgFile, export.HistogramSVG(hist, 800, 400, "#00ccff")); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported histogram to %s\n", svgFile)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	if outFile == "" {
		return st.ExportJSON(cmd.OutOrStdout(), args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportJSON(f, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outFile)
	return nil
}
