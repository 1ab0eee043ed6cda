package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVariantsCmd(logger *slog.Logger, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List known contract variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(cmd, logger)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTEST CONTRACT\tCONTRACT\tOUTPUT")

			for _, v := range s.registry.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					v.Name, v.TestContract, v.Qualified(), v.OutputFile)
			}

			return tw.Flush()
		},
	}
}
