package main

import (
	"github.com/aretw0/archsynth"
	"github.com/aretw0/archsynth/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of archsynth",
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), archsynth.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
