package main

import (
	"fmt"

	"github.com/daxaroodles/ttnexus"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ttnexus",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ttnexus version %s (%s)\n", ttnexus.Version, ttnexus.Branch)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
