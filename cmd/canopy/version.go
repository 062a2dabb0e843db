package main

import (
	"fmt"

	"github.com/phanxgames/canopy"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of canopy",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "canopy version %s\n", canopy.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
