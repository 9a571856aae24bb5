package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daxaroodles/ttnexus/internal/platform"
)

var listCmd = &cobra.Command{
	Use:   "list [celeste_path]",
	Short: "List mods that ship an everest.yaml",
	Long: `Lists the folders under <celeste_path>/Mods that contain an everest.yaml.
Without an argument the Celeste directory is searched upwards from the current directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var base string
		if len(args) == 1 {
			base = args[0]
		} else {
			wd, err := os.Getwd()
			if err != nil {
				app.Reporter.Fatal(fmt.Sprintf("Error getting working directory: %v", err))
				return
			}
			base, err = platform.FindGameRoot(wd)
			if err != nil {
				app.Reporter.Fatal(err.Error())
				return
			}
		}

		mods, err := app.ListMods(base)
		if err != nil {
			app.Reporter.Present(nil, err)
			return
		}
		for _, m := range mods {
			fmt.Fprintln(cmd.OutOrStdout(), m)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
