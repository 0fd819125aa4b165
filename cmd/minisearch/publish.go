package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/kafka"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Replay the corpus into the document ingest topic",
	Long: `Publish every corpus document as a document event so that a running
indexer rebuilds its snapshot from it. Documents are not stored in
postgres.

Examples:
  minisearch publish --corpus corpus.json --batch 500`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().Int("batch", 100, "documents per kafka write")
}

func runPublish(cmd *cobra.Command, args []string) error {
	batchSize, _ := cmd.Flags().GetInt("batch")
	if batchSize <= 0 {
		return fmt.Errorf("--batch must be positive")
	}
	loaded, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	defer loaded.Close()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
	defer producer.Close()

	now := time.Now().UTC()
	batch := make([]kafka.Event, 0, batchSize)
	sent := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := producer.PublishBatch(cmd.Context(), batch); err != nil {
			return err
		}
		sent += len(batch)
		batch = batch[:0]
		return nil
	}
	for _, doc := range loaded.Corpus.Documents() {
		batch = append(batch, kafka.Event{
			Key: doc.ID,
			Value: ingestion.DocumentEvent{
				DocumentID: uuid.NewString(),
				URL:        doc.ID,
				Links:      doc.Links,
				Terms:      doc.Terms,
				IngestedAt: now,
			},
		})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	fmt.Printf("published %d documents to %s\n", sent, cfg.Kafka.Topics.DocumentIngest)
	return nil
}
