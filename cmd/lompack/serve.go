package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/config"
	"github.com/lompack/lompack/internal/home"
	"github.com/lompack/lompack/internal/server"
	"github.com/lompack/lompack/internal/server/endpoints"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lompack server",
	Long: `Start the lompack HTTP server.

The server opens the record database in the home directory and serves the
record, media, LOM, and export APIs. Configuration is hot-reloaded when the
config file changes.

Examples:
  lompack serve                    # Start on default port 8080
  lompack serve --port 3000        # Start on custom port
  lompack serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		host := serveHost
		port := servePort
		if !cmd.Flags().Changed("host") && cfgMgr.Get().Server.Host != "" {
			host = cfgMgr.Get().Server.Host
		}
		if !cmd.Flags().Changed("port") && cfgMgr.Get().Server.Port != "" {
			port = cfgMgr.Get().Server.Port
		}

		srv, err := server.New(server.Config{
			Host:            host,
			Port:            port,
			Home:            h,
			ConfigManager:   cfgMgr,
			SwaggerSpecPath: endpoints.GetSwaggerSpecPath(),
			Logger:          logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
