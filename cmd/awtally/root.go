package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "awtally",
	Short: "awtally - usage analytics over ActivityWatch window exports",
	Long: `awtally loads ActivityWatch bucket exports into an event store and answers
usage questions over them: time spent per application, daily usage of chosen
applications and daily usage per operating system.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to serve command when no subcommand is provided
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
