package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus/source"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/logger"
)

var (
	cfgFile       string
	corpusPath    string
	corpusSource  string
	restrictLinks bool
	verbose       bool
	cfg           *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "minisearch",
	Short: "Rank and query a crawled document corpus",
	Long: `minisearch computes PageRank over the link graph of a corpus and answers
conjunctive-count queries against its inverted index.

Example usage:
  minisearch rank --corpus corpus.json             # pull PageRank, top 10
  minisearch rank --algorithm both --limit 0       # compare pull and push
  minisearch search --strategy taat cat dog        # rank documents for a query
  minisearch snapshot write --dir data/snapshots   # write an index snapshot`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "corpus file or snapshot directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&corpusSource, "source", "", "corpus source: file, snapshot or postgres (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&restrictLinks, "restrict-links", false, "drop links to pages outside the corpus")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if corpusPath != "" {
		cfg.Corpus.Path = corpusPath
	}
	if corpusSource != "" {
		cfg.Corpus.Source = corpusSource
	}
	if cmd.Flags().Changed("restrict-links") {
		cfg.Corpus.RestrictLinks = restrictLinks
	}
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	// Results go to stdout; logs stay on stderr.
	logger.SetupWriter(os.Stderr, level, "text")
	return nil
}

func loadCorpus(cmd *cobra.Command) (*source.Loaded, error) {
	return source.Load(cmd.Context(), cfg)
}
