package main

import (
	"github.com/aretw0/archsynth/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <problem.yaml>",
	Short: "Solve a problem file",
	Long: `Loads a problem (YAML, or JSON by extension), runs the search and prints
the report. The snapshot is saved to the configured store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{
			Options:     sharedOptions(cmd),
			ProblemPath: args[0],
		}
		opts.Backend, _ = cmd.Flags().GetString("backend")
		opts.OutputDir, _ = cmd.Flags().GetString("out")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		return cli.Execute(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("backend", "b", "", "Decision graph backend: linear, topological or tree (default from the problem)")
	runCmd.Flags().StringP("out", "o", "", "Directory for Mermaid dumps and the Markdown report")
	runCmd.Flags().BoolP("quiet", "q", false, "Print nothing but errors")
	runCmd.Flags().BoolP("watch", "w", false, "Solve again whenever the problem file changes")
}
