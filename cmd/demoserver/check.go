package main

import (
	"fmt"
	"time"

	"github.com/portailcloud/demoserver/internal/health"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the local server",
	Long:  "Check the server on the resolved port. Exits non-zero when it does not answer. Suitable as a container HEALTHCHECK.",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var (
	checkType    string
	checkTimeout time.Duration
)

func init() {
	checkCmd.Flags().StringVar(&checkType, "type", "http", "Check type: http or tcp")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", health.DefaultTimeout, "Check timeout")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Port == 0 {
		return fmt.Errorf("cannot check an ephemeral port (PORT=0)")
	}

	err = health.SingleCheck(health.Config{
		Type:    checkType,
		Port:    cfg.Port,
		Timeout: checkTimeout,
	})
	if err != nil {
		return fmt.Errorf("unhealthy: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK    127.0.0.1:%d (%s)\n", cfg.Port, checkType)
	return nil
}
