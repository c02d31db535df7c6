package main

import (
	"github.com/aretw0/archsynth/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes solving and snapshot inspection over HTTP, with search events as
Server-Sent Events on /events and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		return cli.Serve(cmd.Context(), cli.ServeOptions{
			Options: sharedOptions(cmd),
			Port:    port,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
