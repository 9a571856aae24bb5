package main

import (
	"github.com/spf13/cobra"
)

// Translation commands always exit 0; failures are reported on the console
// and in the error log.

var forwardCmd = &cobra.Command{
	Use:     "translate-to-intermediate <celeste_path> <mod_name>",
	Aliases: []string{"fetch_everestyaml"},
	Short:   "Translate a mod's everest.yaml into JSON so the editor can read it",
	Long: `Reads <celeste_path>/Mods/<mod_name>/everest.yaml and writes its content as
JSON to everest.TTNexus.temp in the same folder. A previous temp file is replaced.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_ = app.Forward(cmd.Context(), modRef(args))
	},
}

var reverseCmd = &cobra.Command{
	Use:     "translate-to-source <celeste_path> <mod_name>",
	Aliases: []string{"merge_everestjson"},
	Short:   "Convert everest.TTNexus.temp back into everest.yaml",
	Long: `Reads the JSON temp file written by translate-to-intermediate (and edited by the
editor), overwrites everest.yaml with it and deletes the temp file.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_ = app.Reverse(cmd.Context(), modRef(args))
	},
}

func init() {
	rootCmd.AddCommand(forwardCmd)
	rootCmd.AddCommand(reverseCmd)
}
