package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daxaroodles/ttnexus/pkg/deps"
)

var (
	depsRepo    string
	depsBranch  string
	depsDest    string
	depsInclude []string
)

var depsCmd = &cobra.Command{
	Use:   "fetch-deps",
	Short: "Download and extract the TTNexus dependency bundle",
	Long: `Downloads the branch archive of the dependency repository from GitHub and
extracts it (by default into ../UpdateHelperPackage). The archive is deleted afterwards.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, err := app.FetchDeps(cmd.Context(), deps.Options{
			RepoURL: depsRepo,
			Branch:  depsBranch,
			Dest:    depsDest,
			Include: depsInclude,
		})
		if err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.Flags().StringVar(&depsRepo, "repo", "", "GitHub repository URL (default from config)")
	depsCmd.Flags().StringVar(&depsBranch, "branch", "", "branch to download (default from config)")
	depsCmd.Flags().StringVar(&depsDest, "dest", "", "extraction directory (default from config)")
	depsCmd.Flags().StringSliceVar(&depsInclude, "include", nil, "only extract entries matching these glob patterns (e.g. '**/*.dll')")
}
