package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/daxaroodles/ttnexus/pkg/core"
)

var editCmd = &cobra.Command{
	Use:   "edit <celeste_path> <mod_name>",
	Short: "Translate, wait for the editor to save, then merge back",
	Long: `Runs translate-to-intermediate, then watches everest.TTNexus.temp. As soon as the
editor saves it, the file is merged back into everest.yaml and the session ends.
Interrupting the session leaves the temp file in place.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := app.Edit(cmd.Context(), modRef(args))
		switch {
		case err == nil, core.KindOf(err) != "":
			// Bridge failures were already presented.
		case errors.Is(err, context.Canceled):
			app.Reporter.Config("Edit session stopped; " + core.ArtifactFileName + " was left in place.")
		default:
			app.Reporter.Fatal(err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
