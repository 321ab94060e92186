package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/roadgen/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .roadgen directory and a default config.yaml",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := loadApp(cmd.OutOrStdout())
		if err != nil {
			die("init: %v", err)
		}
		defer a.shutdown()
		fmt.Fprintf(cmd.OutOrStdout(), "Initialised %s in %s\n", config.ProjectDirName, a.cfg.ProjectDir)
		fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", a.cfg.ProjectConfigPath())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
