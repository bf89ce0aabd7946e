package main

import (
	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running lompack server via HTTP.

These commands require a running server (lompack serve).
Use --server to specify a custom server URL.

Examples:
  lompack api health                  # Check server health
  lompack api records list            # List all records
  lompack api records export <id>     # Export a record as a SCORM package`,
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Record management commands",
}

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Media attachment commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerUIEndpoint{}).Command(getServerURL))

	// Records as subcommand group
	recordsCmd.AddCommand((&endpoints.CreateRecordEndpoint{}).Command(getServerURL))
	recordsCmd.AddCommand((&endpoints.ListRecordsEndpoint{}).Command(getServerURL))
	recordsCmd.AddCommand((&endpoints.GetRecordEndpoint{}).Command(getServerURL))
	recordsCmd.AddCommand((&endpoints.UpdateRecordEndpoint{}).Command(getServerURL))
	recordsCmd.AddCommand((&endpoints.DeleteRecordEndpoint{}).Command(getServerURL))
	recordsCmd.AddCommand((&endpoints.GetLOMEndpoint{}).Command(getServerURL))
	recordsCmd.AddCommand((&endpoints.SetLOMEndpoint{}).Command(getServerURL))
	recordsCmd.AddCommand((&endpoints.ExportSCORMEndpoint{}).Command(getServerURL))
	recordsCmd.AddCommand((&endpoints.AssistEndpoint{}).Command(getServerURL))

	// Media as subcommand group
	mediaCmd.AddCommand((&endpoints.AttachMediaEndpoint{}).Command(getServerURL))
	mediaCmd.AddCommand((&endpoints.ListMediaEndpoint{}).Command(getServerURL))
	mediaCmd.AddCommand((&endpoints.DeleteMediaEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(recordsCmd)
	apiCmd.AddCommand(mediaCmd)
	rootCmd.AddCommand(apiCmd)
}
