package main

import (
	"fmt"
	"os"

	"github.com/portailcloud/demoserver/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "demoserver",
	Short: "Demo HTTP server with a host status page",
	Long: "Serve a French status page showing this host's name at / and /index.html, " +
		"and static files from the configured root for every other path. " +
		"The port comes from $PORT, falling back to 8000.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to an optional YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Resolve(); err != nil {
		return nil, fmt.Errorf("resolving config: %w", err)
	}
	return cfg, nil
}
