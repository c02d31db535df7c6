package main

import (
	"fmt"

	"github.com/aretw0/archsynth/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <problem.yaml>",
	Short: "Check a problem file without solving it",
	Long:  `Parses the problem, checks layer, node and step references, and builds every engine so bad kinds and arguments are reported.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commands, _ := cmd.Flags().GetString("commands")
		p, err := cli.Validate(args[0], commands)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Problem '%s' is valid: %d layers, %d steps.\n", p.Name, len(p.Layers), len(p.Steps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
