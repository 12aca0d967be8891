package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"pantry-chef/internal/matching"
	"pantry-chef/internal/metrics"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

type healthReport struct {
	Recipes int                  `json:"recipes"`
	Usage   []metrics.DailyUsage `json:"recognitionUsage"`
	System  metrics.SysHealth    `json:"system"`
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func outputFormat(cmd *cli.Command) (string, error) {
	switch f := cmd.String("format"); f {
	case formatTable, formatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table or json)", f)
	}
}

func printResults(cmd *cli.Command, results []matching.Result) error {
	w := cmd.Root().Writer
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSON(w, results)
	}
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No matching recipes.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSCORE\tTIME\tDIFFICULTY\tMISSING")
	for _, res := range results {
		r := res.Recipe
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%dm\t%s\t%s\n",
			r.ID, r.Title, res.Score, r.CookingTime, r.Difficulty, strings.Join(res.MissingIngredients, ", "))
	}
	return tw.Flush()
}

func printHealth(cmd *cli.Command, report healthReport) error {
	w := cmd.Root().Writer
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSON(w, report)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Recipes:\t%d\n", report.Recipes)
	fmt.Fprintf(tw, "Memory:\t%dMB alloc / %dMB sys\n", report.System.AllocMB, report.System.SysMB)
	fmt.Fprintf(tw, "Goroutines:\t%d\n", report.System.Goroutines)
	fmt.Fprintf(tw, "Data on disk:\t%s\n", report.System.DataDiskSize)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if len(report.Usage) == 0 {
		_, err := fmt.Fprintln(w, "No recognition calls recorded.")
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCALLS\tFAILURES\tAVG LATENCY")
	for _, u := range report.Usage {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%dms\n", u.Date, u.Calls, u.Failures, u.AvgLatencyMS)
	}
	return tw.Flush()
}
