package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/etag"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/jjenkins/adressen/internal/handlers"
	"github.com/jjenkins/adressen/internal/table"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the address table web server",
	Long: `Start the web server that renders the address table.

Filter inputs are debounced in the browser and update the table through
htmx partial requests, which never refetch the address list. A full page
load reuses the cached list while it is fresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Flag wins, then PORT, then config
		if !cmd.Flags().Changed("port") {
			port = cfg.Port
			if envPort := os.Getenv("PORT"); envPort != "" {
				port = envPort
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		loader, cleanup, err := newLoader()
		if err != nil {
			return err
		}
		defer cleanup()

		dataset := handlers.NewDataset(table.AddressColumns(), cfg.PageSize)

		// Warm the dataset so the first visitor does not wait for the fetch
		dataset.WarmUp(ctx, loader)

		app := fiber.New(fiber.Config{
			AppName:               "Adressenliste",
			DisableStartupMessage: true,
		})

		app.Use(recover.New())
		app.Use(fiberlogger.New())
		app.Use(etag.New())

		// Routes
		addresses := handlers.AddressesHandler(loader, dataset, cfg.Debounce)
		app.Get("/", addresses)
		app.Get(handlers.AddressesPath, addresses)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logger.Info("received interrupt signal, shutting down")
			cancel()
			_ = app.Shutdown()
		}()

		logger.Info("starting server", "port", port, "endpoint", cfg.Endpoint, "staleness", cfg.Staleness)
		return app.Listen(":" + port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
