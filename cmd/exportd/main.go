package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-impact-export/config"
	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "exportd",
		Short:         "Render impact data as CSV, spreadsheet, JSON or PDF downloads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(),
		newRenderCmd(),
		newBatchCmd(),
		newTypesCmd(),
	)
	return root
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
