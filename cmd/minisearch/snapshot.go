package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/segment"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write or inspect index snapshots",
}

var snapshotWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the corpus as a new snapshot segment",
	Long: `Write the loaded corpus as a .spdx snapshot the searcher can start from
with corpus source "snapshot".

Examples:
  minisearch snapshot write --corpus corpus.json --dir data/snapshots`,
	RunE: runSnapshotWrite,
}

var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect [SEGMENT]",
	Short: "Show the header of a snapshot segment",
	Long: `Show document and term counts of a snapshot segment. Without an argument
the newest segment in --dir is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotInspect,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotWriteCmd, snapshotInspectCmd)

	snapshotCmd.PersistentFlags().String("dir", "", "snapshot directory (default from config)")
}

func snapshotDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir
	}
	return cfg.Indexer.DataDir
}

func runSnapshotWrite(cmd *cobra.Command, args []string) error {
	loaded, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	defer loaded.Close()

	dir := snapshotDir(cmd)
	name, err := segment.NewWriter(dir).Write(loaded.Corpus)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, filepath.Join(dir, name))
	return nil
}

func runSnapshotInspect(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		latest, err := segment.Latest(snapshotDir(cmd))
		if err != nil {
			return err
		}
		path = latest
	}
	r, err := segment.OpenReader(path)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "path\t%s\n", r.Path())
	fmt.Fprintf(w, "created\t%s\n", r.CreatedAt().Format(time.RFC3339))
	fmt.Fprintf(w, "documents\t%d\n", r.DocCount())
	fmt.Fprintf(w, "terms\t%d\n", r.Terms())
	return w.Flush()
}
