package cmd

import (
	"fmt"

	"github.com/brogergvhs/cubarid/internal/config"

	"github.com/spf13/cobra"
)

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the config file to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigPath()

		if err := config.SaveYAML(config.DefaultConfig(), path); err != nil {
			return err
		}

		fmt.Printf("Reset config: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
}
