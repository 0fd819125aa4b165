package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCorpus = `[
	{"id": "P", "links": ["M", "L"], "terms": ["cat", "language"]},
	{"id": "M", "links": ["P"], "terms": ["cat", "dog"]},
	{"id": "L", "links": ["M"], "terms": ["dog"]}
]`

// run executes the root command. Flag values persist between runs, so tests
// set every flag whose value matters.
func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(testCorpus), 0o644))
	return path
}

func TestRankCommand(t *testing.T) {
	path := writeCorpus(t)
	require.NoError(t, run(t, "rank", "--corpus", path, "--algorithm", "both", "--limit", "0"))
	require.NoError(t, run(t, "rank", "--corpus", path, "--algorithm", "push", "--json"))
	require.Error(t, run(t, "rank", "--corpus", path, "--algorithm", "bogus"))
	require.Error(t, run(t, "rank", "--corpus", path, "--damping", "1.5"))
}

func TestSearchCommand(t *testing.T) {
	path := writeCorpus(t)
	require.NoError(t, run(t, "search", "--corpus", path, "--compare", "cat", "dog"))
	require.NoError(t, run(t, "search", "--corpus", path, "--strategy", "taat", "--workers", "2", "--compare", "dog"))
	require.Error(t, run(t, "search", "--corpus", path, "--strategy", "bm25", "cat"))
	require.Error(t, run(t, "search", "--corpus", path, "--sql", "cat"))
}

func TestSnapshotCommands(t *testing.T) {
	path := writeCorpus(t)
	dir := t.TempDir()
	require.NoError(t, run(t, "snapshot", "write", "--corpus", path, "--dir", dir))
	require.NoError(t, run(t, "snapshot", "inspect", "--dir", dir))
	require.NoError(t, run(t, "search", "--source", "snapshot", "--corpus", dir, "--strategy", "daat", "--sql=false", "--compare", "cat"))
}
