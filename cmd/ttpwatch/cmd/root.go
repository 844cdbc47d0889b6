package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool
var configPath string

var rootCmd = &cobra.Command{
	Use:   "ttpwatch",
	Short: "ttpwatch polls the TTP scheduler for Global Entry appointment slots and notifies when availability changes.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging/instrumentation.")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "Path to the configuration file.")
}
