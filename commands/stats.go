package commands

import (
	"strings"

	"github.com/penwyp/go-tally/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print each topic's count and share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := formatter.New(output)
			if err != nil {
				return err
			}

			store, kv, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			return f.Format(cmd.OutOrStdout(), formatter.BuildStats(store.Snapshot(), store.Capacity()))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatter.OutputTable,
		"Output format ("+strings.Join(formatter.Outputs, ", ")+")")
	return cmd
}
