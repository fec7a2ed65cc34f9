package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grant-mapper/internal/dataset"
	"github.com/pdiddy/grant-mapper/internal/match"
	"github.com/pdiddy/grant-mapper/pkg/types"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Preview heuristic candidate selection without API calls",
	Long: `Candidates runs only the local pre-filtering stage: investigator name
matching and award-period checks. It prints the candidate grants each
publication would send to the scoring backend, which makes it a free dry
run for estimating API cost and sanity-checking the input data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		grantsPath, _ := flags.GetString("grants")
		pubsPath, _ := flags.GetString("publications")
		maxCandidates, _ := flags.GetInt("max-candidates")
		verbose, _ := flags.GetBool("verbose")

		grants, err := dataset.LoadGrants(grantsPath)
		if err != nil {
			return err
		}
		pubs, err := dataset.LoadPublications(pubsPath)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		withCandidates := 0
		totalCalls := 0
		for i, pub := range pubs {
			candidates := match.SelectCandidates(pub, grants, maxCandidates)
			if len(candidates) == 0 {
				if verbose {
					fmt.Fprintf(w, "[%d/%d] %s (%d): no candidates\n", i+1, len(pubs), pub.Title, pub.Year)
				}
				continue
			}
			withCandidates++
			totalCalls += len(candidates)

			fmt.Fprintf(w, "[%d/%d] %s (%d)\n", i+1, len(pubs), pub.Title, pub.Year)
			for _, cand := range candidates {
				fmt.Fprintf(w, "  %s  %s  (investigators: %s, temporal: %.2f, score: %.2f)\n",
					cand.Grant.Code, cand.Grant.Title, matchedAuthors(cand), cand.TemporalScore, cand.RankScore())
			}
		}

		exhaustive := len(pubs) * len(grants)
		fmt.Fprintf(w, "\n%d of %d publications have candidates; %d judgment calls needed", withCandidates, len(pubs), totalCalls)
		if exhaustive > 0 {
			fmt.Fprintf(w, " (vs %d exhaustive pairings)", exhaustive)
		}
		fmt.Fprintln(w)
		return nil
	},
}

func matchedAuthors(cand types.CandidateGrant) string {
	out := ""
	for i, m := range cand.Matches {
		if i > 0 {
			out += ", "
		}
		out += m.Author
	}
	return out
}

func init() {
	candidatesCmd.Flags().String("grants", "grants.yaml", "grant portfolio file (YAML)")
	candidatesCmd.Flags().String("publications", "publications.csv", "publication list file (CSV)")
	candidatesCmd.Flags().Int("max-candidates", match.DefaultMaxCandidates, "candidate grants kept per publication")
	candidatesCmd.Flags().Bool("verbose", false, "also list publications with no candidates")

	rootCmd.AddCommand(candidatesCmd)
}
