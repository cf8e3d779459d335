package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/goodtune/awtally/internal/storage"
	"github.com/goodtune/awtally/internal/usage"
	"github.com/spf13/cobra"
)

var (
	queryStart    string
	queryEnd      string
	queryMinHours float64
	metaScan      bool
)

var spentCmd = &cobra.Command{
	Use:   "spent",
	Short: "Print hours spent per application title",
	Args:  cobra.NoArgs,
	RunE:  runSpent,
}

var dailyCmd = &cobra.Command{
	Use:   "daily TITLE...",
	Short: "Print daily hours for the given application titles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDaily,
}

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Print daily hours per operating system",
	Args:  cobra.NoArgs,
	RunE:  runPlatforms,
}

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Print the date span and size of the dataset",
	Long: `Print the date span and size of the dataset. With --scan the values are
recomputed from every stored event and a mismatch with the store summary is
reported as an error.`,
	Args:  cobra.NoArgs,
	RunE:  runMeta,
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Print the known titles and their identifiers",
	Args:  cobra.NoArgs,
	RunE:  runApps,
}

func init() {
	for _, cmd := range []*cobra.Command{spentCmd, dailyCmd, platformsCmd} {
		cmd.Flags().StringVar(&queryStart, "start", "", "Start of the range (RFC 3339 timestamp or YYYY-MM-DD)")
		cmd.Flags().StringVar(&queryEnd, "end", "", "End of the range (RFC 3339 timestamp or YYYY-MM-DD)")
	}
	metaCmd.Flags().BoolVar(&metaScan, "scan", false, "Recompute metadata from a full scan of the event store")
	spentCmd.Flags().Float64Var(&queryMinHours, "min-hours", -1, "Minimum hours per app (defaults to query.min_duration_hours)")

	rootCmd.AddCommand(spentCmd, dailyCmd, platformsCmd, metaCmd, appsCmd)
}

func runSpent(cmd *cobra.Command, args []string) error {
	start, end, err := queryRange()
	if err != nil {
		return err
	}

	opts := usage.SpentTimeOptions{Start: start, End: end}
	if cmd.Flags().Changed("min-hours") {
		if queryMinHours < 0 {
			return fmt.Errorf("--min-hours must not be negative")
		}
		opts.MinHours = &queryMinHours
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.engine.SpentTime(cmd.Context(), opts)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), rows)
}

func runDaily(cmd *cobra.Command, args []string) error {
	start, end, err := queryRange()
	if err != nil {
		return err
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.engine.DailyUsage(cmd.Context(), args, start, end)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), rows)
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	start, end, err := queryRange()
	if err != nil {
		return err
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.engine.DailyPlatformUsage(cmd.Context(), start, end)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), rows)
}

func runMeta(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	meta, err := a.engine.DatasetMetadata(cmd.Context())
	if err != nil {
		return err
	}
	if metaScan {
		scanned, err := a.engine.ScanMetadata(cmd.Context())
		if err != nil {
			return err
		}
		if err := compareMetadata(meta, scanned); err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), meta)
}

func runApps(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return printJSON(cmd.OutOrStdout(), a.engine.ListKnownApps())
}

// compareMetadata reports where a store summary disagrees with a full scan.
func compareMetadata(summary, scanned storage.Metadata) error {
	sameTime := func(a, b *time.Time) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Equal(*b)
	}
	switch {
	case summary.TotalRecords != scanned.TotalRecords:
		return fmt.Errorf("store reports %d records, scan found %d", summary.TotalRecords, scanned.TotalRecords)
	case !sameTime(summary.StartDate, scanned.StartDate):
		return fmt.Errorf("store start date disagrees with scan")
	case !sameTime(summary.EndDate, scanned.EndDate):
		return fmt.Errorf("store end date disagrees with scan")
	}
	return nil
}

func queryRange() (start, end *time.Time, err error) {
	start, err = usage.ParseBound(queryStart, false)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --start: %w", err)
	}
	end, err = usage.ParseBound(queryEnd, true)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --end: %w", err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fmt.Errorf("--end must not be before --start")
	}
	return start, end, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
