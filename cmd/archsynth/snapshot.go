package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/archsynth/internal/cli"
	"github.com/aretw0/archsynth/internal/presentation/graph"
	"github.com/aretw0/archsynth/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored search snapshots",
	Long:  `List, inspect, and remove the snapshots saved by previous runs.`,
}

var snapshotLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		pers, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer pers.Close()

		ids, err := pers.Store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing snapshots: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No snapshots found.")
			return nil
		}
		fmt.Fprintln(out, "Snapshots:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect <snapshot-id>",
	Short: "Print a snapshot as JSON, a report or a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		layerName, _ := cmd.Flags().GetString("layer")

		pers, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer pers.Close()

		snap, err := pers.Store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading snapshot '%s': %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
		case "report":
			fmt.Fprint(out, tui.ReportMarkdown(snap.Report))
		case "decisions":
			fmt.Fprint(out, graph.DecisionMermaid(snap.Decisions, nil))
		case "layer":
			l, ok := snap.Layer(layerName)
			if !ok {
				return fmt.Errorf("layer %q not found", layerName)
			}
			fmt.Fprint(out, graph.LayerMermaid(l))
		default:
			return fmt.Errorf("unknown format %q (want json, report, decisions or layer)", format)
		}
		return nil
	},
}

var snapshotRmCmd = &cobra.Command{
	Use:   "rm <snapshot-id>...",
	Short: "Remove one or more snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pers, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer pers.Close()

		var failed int
		for _, id := range args {
			if err := pers.Store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed snapshot '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d snapshots not removed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotLsCmd)
	snapshotCmd.AddCommand(snapshotInspectCmd)
	snapshotCmd.AddCommand(snapshotRmCmd)

	snapshotInspectCmd.Flags().StringP("format", "f", "json", "Output format: json, report, decisions or layer")
	snapshotInspectCmd.Flags().String("layer", "", "Layer to draw with --format layer")
}

func openStore(cmd *cobra.Command) (*cli.Persistence, error) {
	pers, err := cli.OpenStore(sharedOptions(cmd).Store)
	if err != nil {
		return nil, err
	}
	if pers.Store == nil {
		return nil, fmt.Errorf("no snapshot store configured")
	}
	return pers, nil
}
