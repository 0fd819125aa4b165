package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/evaluator"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
)

var searchCmd = &cobra.Command{
	Use:   "search TERM...",
	Short: "Rank documents by how many query terms they contain",
	Long: `Evaluate a query against the corpus index. Documents are scored by the
number of distinct query terms they contain and listed by score, then id.

Examples:
  minisearch search cat dog                 # document-at-a-time
  minisearch search --strategy taat cat     # term-at-a-time
  minisearch search --compare cat dog       # check both strategies agree
  minisearch search --source postgres --sql cat   # evaluate in SQL`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("strategy", "", "daat or taat (default from config)")
	searchCmd.Flags().Int("limit", 10, "number of results, 0 for all")
	searchCmd.Flags().Int("workers", 0, "goroutines for taat (default from config)")
	searchCmd.Flags().Bool("compare", false, "run both strategies and fail if they disagree")
	searchCmd.Flags().Bool("sql", false, "evaluate in postgres instead of the in-memory index")
	searchCmd.Flags().Bool("json", false, "output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	strategyFlag, _ := cmd.Flags().GetString("strategy")
	if strategyFlag == "" {
		strategyFlag = cfg.Search.Strategy
	}
	strategy, err := evaluator.ParseStrategy(strategyFlag)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	workers := cfg.Search.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	compare, _ := cmd.Flags().GetBool("compare")
	useSQL, _ := cmd.Flags().GetBool("sql")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	plan := parser.Parse(strings.Join(args, " "))

	loaded, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	defer loaded.Close()

	var result *executor.SearchResult
	if useSQL {
		if loaded.Store == nil {
			return fmt.Errorf("--sql needs the postgres corpus source")
		}
		ranked, err := loaded.Store.Search(cmd.Context(), plan.Terms)
		if err != nil {
			return err
		}
		result = &executor.SearchResult{
			Query:     plan.RawQuery,
			Strategy:  "sql",
			TotalHits: len(ranked),
			Results:   merger.TopK(ranked, limit),
		}
	} else {
		exec := executor.New(loaded.Corpus.Index(), executor.WithWorkers(workers))
		result, err = exec.Execute(cmd.Context(), plan, strategy, limit)
		if err != nil {
			return err
		}
		if compare {
			other := evaluator.TAAT
			if strategy == evaluator.TAAT {
				other = evaluator.DAAT
			}
			check, err := exec.Execute(cmd.Context(), plan, other, 0)
			if err != nil {
				return err
			}
			full, err := exec.Execute(cmd.Context(), plan, strategy, 0)
			if err != nil {
				return err
			}
			if !ranker.Equal(full.Results, check.Results) {
				return fmt.Errorf("%s and %s disagree for %q", strategy, other, plan.RawQuery)
			}
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "# %q via %s: %d hits\n", plan.Key(), result.Strategy, result.TotalHits)
	fmt.Fprintln(w, "SCORE\tDOCUMENT")
	for _, d := range result.Results {
		fmt.Fprintf(w, "%d\t%s\n", d.Score, d.DocID)
	}
	return w.Flush()
}
