package main

import (
	"github.com/portailcloud/demoserver/internal/page"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the status page for this host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := page.NewRenderer(cfg.Port)
		if err != nil {
			return err
		}
		return r.Render(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
