package main

import (
	"fmt"

	"github.com/phanxgames/canopy/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a config file",
	Long:  `Parses a config file and reports every invalid value.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("validate: no config file given")
		}
		if _, err := config.Load(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
