package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	exportqry "github.com/goliatone/go-impact-export/query"
	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List exportable entity types and output formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := exportqry.NewExportCapabilitiesHandler().Query(cmd.Context(), exportqry.ExportCapabilities{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(caps)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tLABEL")
			for _, t := range caps.Types {
				fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.Label)
			}
			fmt.Fprintln(tw, "\nFORMAT\tEXTENSION\tCONTENT TYPE")
			for _, f := range caps.Formats {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Extension, f.ContentType)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
