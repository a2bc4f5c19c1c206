package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"koomy/portal/internal/config"
)

const (
	programName = "koomy-portal"
)

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

// loadConfig reads the config file and environment, then applies the global
// flags on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if globalFlags.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// withConfig is the PreRunE of commands that need a validated config
func withConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("no config found in context")
	}
	return cfg, nil
}

// @title Koomy Portal API
// @version 1.0
// @description Backend-for-frontend of the Koomy community portal.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Koomy community portal backend",
		SilenceUsage:  true,
		PreRunE:       withConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	// Subcommands
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(resolveAssetsCommand())
	rootCmd.AddCommand(hslCommand())
	rootCmd.AddCommand(orphansCommand())

	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
