package main

import (
	"os"

	"github.com/spf13/cobra"

	"meal-export-backend/config"
)

const defaultConfigPath = "./config/config.yaml"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "meald",
	Short: "School meal schedule gateway and exporter",
	Long: `meald relays the NEIS school meal schedule for a month, serves a small
browser UI for previewing it, and exports the reshaped schedule as JSON.

Running meald without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or ./config/config.yaml)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}
