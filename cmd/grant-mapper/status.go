package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grant-mapper/internal/batch"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of an interrupted mapping run",
	RunE: func(cmd *cobra.Command, args []string) error {
		progressFile, _ := cmd.Flags().GetString("progress")

		p, err := batch.NewProgressStore(progressFile).Load()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if p == nil {
			fmt.Fprintln(w, "no run in progress")
			return nil
		}

		fmt.Fprintf(w, "run paused at batch %d (last updated %s)\n", p.BatchNumber, p.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(w, "  processed: %d/%d publications\n", p.ProcessedCount, p.TotalPublications)
		fmt.Fprintf(w, "  mapped:    %d\n", p.MappedCount)
		fmt.Fprintf(w, "  API calls: %d made, %d rate-limited\n", p.APICallsMade, p.APICallsFailed)
		fmt.Fprintln(w, "rerun `grant-mapper run` with the same inputs to resume")
		return nil
	},
}

func init() {
	statusCmd.Flags().String("progress", batch.DefaultProgressFile, "progress document to inspect")

	rootCmd.AddCommand(statusCmd)
}
