package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jjenkins/adressen/internal/table"
)

var fetchForce bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the address list into the cache",
	Long: `Fetch resolves the address list through the cache and prints a summary.

A cached copy younger than the staleness window is reused. Use --force to
ignore the cached copy and always download the list.

Examples:
  # Warm the cache
  adressen fetch

  # Refresh regardless of age
  adressen fetch --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchForce {
			cfg.Staleness = 0
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		loader, cleanup, err := newLoader()
		if err != nil {
			return err
		}
		defer cleanup()

		switch msg := loader.Load(ctx).(type) {
		case table.DataLoaded:
			source := "downloaded"
			if msg.Stale {
				source = "cache (stale, download failed)"
			} else if msg.FromCache {
				source = "cache"
			}

			m := table.New(table.AddressColumns(), cfg.PageSize).Update(msg)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Endpoint:    %s\n", loader.Endpoint())
			fmt.Fprintf(out, "Addresses:   %s\n", humanize.Comma(int64(m.TotalRows())))
			fmt.Fprintf(out, "Postal codes: %d\n", m.FacetedUniqueValues(table.ColPostalCode))
			fmt.Fprintf(out, "Districts:   %d\n", m.FacetedUniqueValues(table.ColDistrict))
			fmt.Fprintf(out, "Streets:     %s\n", humanize.Comma(int64(m.FacetedUniqueValues(table.ColStreet))))
			fmt.Fprintf(out, "Source:      %s\n", source)
			fmt.Fprintf(out, "Captured:    %s (%s)\n", msg.CapturedAt.Local().Format(time.RFC1123), humanize.Time(msg.CapturedAt))
			return nil
		case table.DataFailed:
			return fmt.Errorf("failed to load address list: %w", msg.Err)
		default:
			return fmt.Errorf("unexpected loader result %T", msg)
		}
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "Ignore the cached copy and download the list")
}
