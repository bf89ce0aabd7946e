package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/config"
	"github.com/lompack/lompack/internal/home"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the lompack home directory",
	Long: `Create the lompack home directory and write a default config file.

The home directory holds the record database, attached media files, and the
configuration. An existing config file is never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		if h.ConfigExists() {
			fmt.Printf("Config already exists: %s\n", h.ConfigPath())
			return nil
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}

		fmt.Printf("Initialized %s\n", h.Path())
		fmt.Printf("Config written to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
