package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-tally/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		dir    string
		format string
		stdout string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export totals and events",
		Long: `Writes event-counter-totals-<time>.csv and event-counter-events-<time>.csv
to the export directory. --format parquet writes the events as a parquet file
instead, and --stdout prints one CSV to standard output without writing files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = a.cfg.ExportDir
			}

			store, kv, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()
			snap := store.Snapshot()
			out := cmd.OutOrStdout()

			switch stdout {
			case "":
			case formatter.KindTotals:
				_, err := io.WriteString(out, formatter.TotalsCSV(snap.Topics))
				return err
			case formatter.KindEvents:
				_, err := io.WriteString(out, formatter.EventsCSV(snap.Timeline))
				return err
			default:
				return fmt.Errorf("invalid --stdout %q: must be totals or events", stdout)
			}

			now := time.Now()
			switch format {
			case "csv":
				paths, err := formatter.WriteExport(dir, now, snap)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(out, p)
				}
			case "parquet":
				path, err := formatter.WriteParquetExport(dir, now, snap)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, path)
			default:
				return fmt.Errorf("invalid --format %q: must be csv or parquet", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default is export-dir)")
	cmd.Flags().StringVar(&format, "format", "csv", "File format (csv, parquet)")
	cmd.Flags().StringVar(&stdout, "stdout", "", "Print one CSV to standard output (totals, events)")
	return cmd
}
