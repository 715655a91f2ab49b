package main

import (
	"fmt"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-impact-export/command"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var (
		file       string
		outDir     string
		maxExports int
		interval   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render every export listed in a JSON batch file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			batch := command.NewBatchCommand(app.Coordinator, nil,
				command.WithBatchSink(command.DirSink(outDir)),
				command.WithBatchLimits(command.BatchLimits{MaxRequests: maxExports, MinInterval: interval}),
			)
			subs, err := command.RegisterHandlers(gcmd.NewRegistry(), app.Coordinator, app.Resolver, batch)
			if err != nil {
				return err
			}
			defer func() {
				for _, sub := range subs {
					sub.Unsubscribe()
				}
			}()

			report, err := dispatcher.DispatchWithResult[command.RunBatch, command.BatchReport](
				cmd.Context(),
				command.RunBatch{From: file},
			)
			for _, result := range report.Results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d rows\n", result.ID, result.Filename, result.Rows)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d exports written to %s (%d fallbacks)\n", report.Completed, outDir, report.Fallbacks)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON batch file")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVar(&maxExports, "max", 0, "maximum exports to render (0 for all)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "pause between exports")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
