package main

import (
	"github.com/spf13/cobra"
)

var ingestForce bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the export directory into the event store",
	Long: `Load every export file in the configured directory into the event store.
Without --force nothing is loaded when the store already holds events. Events
that are already stored are never inserted twice.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "Load even when the store already holds events")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.load(cmd.Context(), ingestForce)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
