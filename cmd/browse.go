package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jjenkins/adressen/internal/table"
	"github.com/jjenkins/adressen/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the address table in the terminal",
	Long: `Browse opens the address table as a terminal UI.

Tab moves between the filter inputs and the table. Filters apply once
typing pauses for the configured debounce; the arrow keys and PgUp/PgDn
switch pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// Log lines would tear the alt screen
		logger.SetOutput(io.Discard)

		loader, cleanup, err := newLoader()
		if err != nil {
			return err
		}
		defer cleanup()

		browser := ui.NewBrowser(ctx, loader.Load, table.AddressColumns(), cfg.PageSize, cfg.Debounce)
		p := tea.NewProgram(browser, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal browser failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
