package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grant-mapper/internal/batch"
	"github.com/pdiddy/grant-mapper/internal/dataset"
	"github.com/pdiddy/grant-mapper/internal/judge"
	"github.com/pdiddy/grant-mapper/internal/match"
	"github.com/pdiddy/grant-mapper/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the grant-publication mapping pipeline",
	Long: `Run loads a grant portfolio (YAML) and a publication list (CSV), selects
candidate grants per publication with investigator and award-period
heuristics, scores the candidates through the configured AI endpoint, and
writes the best match per publication to the results CSV.

If a progress file from an interrupted run exists, the run resumes from it.
Interrupting the run (Ctrl-C) or hitting the backend's rate limit persists
progress and partial results before exiting or backing off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		grantsPath, _ := flags.GetString("grants")
		pubsPath, _ := flags.GetString("publications")

		grants, err := dataset.LoadGrants(grantsPath)
		if err != nil {
			return err
		}
		pubs, err := dataset.LoadPublications(pubsPath)
		if err != nil {
			return err
		}

		baseURL, _ := flags.GetString("base-url")
		if baseURL == "" {
			baseURL = viper.GetString("judge.base_url")
		}
		if baseURL == "" {
			return fmt.Errorf("no scoring endpoint configured: set --base-url or judge.base_url")
		}
		model, _ := flags.GetString("model")
		if model == "" {
			model = viper.GetString("judge.model")
		}
		apiKey, _ := flags.GetString("api-key")
		apiKey = secretDefault("scoring-api-key", apiKey)

		timeout, _ := flags.GetDuration("timeout")
		judgeCfg := types.JudgeConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: "grant-mapper/" + version,
			},
			BaseURL: baseURL,
			Model:   model,
		}
		if apiKey != "" {
			judgeCfg.Authorization = "Bearer " + apiKey
		}

		maxCandidates, _ := flags.GetInt("max-candidates")
		batchSize, _ := flags.GetInt("batch-size")
		callDelay, _ := flags.GetDuration("call-delay")
		retryDelay, _ := flags.GetDuration("retry-delay")
		resultsFile, _ := flags.GetString("results")
		progressFile, _ := flags.GetString("progress")
		checkpointFile, _ := flags.GetString("checkpoint")

		coord := batch.New(
			judge.New(&judge.ChatBackend{Config: judgeCfg}),
			types.MatchConfig{MaxCandidates: maxCandidates},
			types.BatchConfig{
				BatchSize:      batchSize,
				CallDelay:      callDelay,
				RetryDelay:     retryDelay,
				ProgressFile:   progressFile,
				ResultsFile:    resultsFile,
				CheckpointFile: checkpointFile,
			},
			cmd.OutOrStdout(),
		)

		// Interrupts cancel the context; the coordinator persists progress
		// and partial results before returning.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if _, err := coord.Run(ctx, grants, pubs); err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(os.Stderr, "interrupted: progress saved, rerun to resume")
			}
			return err
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("grants", "grants.yaml", "grant portfolio file (YAML)")
	runCmd.Flags().String("publications", "publications.csv", "publication list file (CSV)")
	runCmd.Flags().String("results", batch.DefaultResultsFile, "cumulative results CSV")
	runCmd.Flags().String("progress", batch.DefaultProgressFile, "progress document for resumable runs")
	runCmd.Flags().String("checkpoint", batch.DefaultCheckpoint, "partial-results CSV written on interruption")
	runCmd.Flags().Int("batch-size", batch.DefaultBatchSize, "publications per batch")
	runCmd.Flags().Int("max-candidates", match.DefaultMaxCandidates, "candidate grants judged per publication")
	runCmd.Flags().Duration("call-delay", 2*time.Second, "delay between judgment calls")
	runCmd.Flags().Duration("retry-delay", 60*time.Second, "backoff after a rate-limit interruption")
	runCmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout for judgment calls")
	runCmd.Flags().String("base-url", "", "chat-completion endpoint of the scoring backend")
	runCmd.Flags().String("model", "", "model identifier for judgment requests")
	runCmd.Flags().String("api-key", "", "scoring API key (default: .secrets/scoring-api-key)")

	rootCmd.AddCommand(runCmd)
}
