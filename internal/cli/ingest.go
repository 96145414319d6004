package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docsqa/internal/chunker"
	openaiembed "docsqa/internal/embedding/openai"
	"docsqa/internal/ingest"
	"docsqa/internal/summarizer"
	"docsqa/internal/vectorstore/sqlite"
)

var (
	docsDir   string
	indexDir  string
	chunkSize int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector index from a directory of markdown files",
	Long: `ingest reads every *.md file directly under --docs-dir, splits each
into token-bounded chunks, embeds them, and writes the index to the
index directory. Re-running replaces the previous index.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&docsDir, "docs-dir", "", "directory of markdown documents (required)")
	ingestCmd.Flags().StringVar(&indexDir, "index-dir", "", "where to write the index (default from config)")
	ingestCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "chunk size in tokens (default from config)")
	_ = ingestCmd.MarkFlagRequired("docs-dir")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	key, err := resolveAPIKey()
	if err != nil {
		return err
	}

	if indexDir == "" {
		indexDir = cfg.Paths.IndexDir
	}
	if chunkSize <= 0 {
		chunkSize = cfg.Chunker.ChunkSize
	}

	ch, err := chunker.NewMarkdownChunker(chunkSize)
	if err != nil {
		return err
	}
	embedder, err := openaiembed.NewClient(openaiembed.Config{
		APIKey:    key,
		Model:     cfg.Embedder.Model,
		Dimension: cfg.Embedder.Dimension,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
		BatchSize: cfg.Embedder.BatchSize,
	})
	if err != nil {
		return err
	}

	pipeline := ingest.New(ch, embedder, sqlite.Builder{},
		ingest.WithSummarizer(summarizer.NewFrequencySummarizer(), cfg.Summarizer.MaxSentences))

	stats, err := pipeline.Run(cmd.Context(), docsDir, indexDir)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d documents (%d chunks) into %s in %s\n",
		stats.Documents, stats.Chunks, indexDir, stats.Elapsed.Round(time.Millisecond))
	if stats.Summary != "" {
		fmt.Printf("\nCorpus summary:\n%s\n", stats.Summary)
	}
	return nil
}
