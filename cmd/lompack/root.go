package main

import (
	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "lompack",
	Short: "Heritage record catalog with SCORM 1.2 package export",
	Long: `lompack manages heritage education records - title, description,
IEEE LOM-style metadata, and attached media - and exports each record as a
self-contained SCORM 1.2 package ready for LMS ingest.

The exported package contains:
  - An imsmanifest.xml declaring a single SCO
  - A standalone HTML viewer for the record and its media
  - The LOM metadata tree as both JSON and XML
  - All attached media files`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.lompack/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "lompack home directory (default: ~/.lompack)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
