// Command minisearch ranks and queries a corpus from the command line.
//
// Usage:
//
//	minisearch rank --corpus data/corpus.json --algorithm both
//	minisearch search --corpus data/corpus.json cat dog
//	minisearch snapshot write --corpus data/corpus.json --dir data/snapshots
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
