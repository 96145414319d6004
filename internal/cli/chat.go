package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docsqa/internal/chat"
	"docsqa/internal/domain"
	openaiembed "docsqa/internal/embedding/openai"
	"docsqa/internal/generate"
	"docsqa/internal/prompt"
	"docsqa/internal/tui"
	"docsqa/internal/vectorstore/sqlite"
)

var templateIndex int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the indexed documentation",
	Long: `chat opens an interactive terminal session over the existing index.
The index and prompt template load on the first question, so the chat
starts instantly; run "docsqa ingest" first if the index is missing.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVar(&templateIndex, "template", -1, "prompt template index (default from config)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	key, err := resolveAPIKey()
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
	generator, err := generate.NewClient(generate.Config{
		APIKey:      key,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
		Timeout:     time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return err
	}

	tmplIndex := templateIndex
	if tmplIndex < 0 {
		tmplIndex = cfg.Paths.TemplateIndex
	}
	indexDir := cfg.Paths.IndexDir
	templates := cfg.Paths.Templates

	session := chat.NewSession(chat.Options{
		Embedder:  embedder,
		Generator: generator,
		OpenIndex: func() (domain.Searcher, error) {
			return sqlite.Open(indexDir)
		},
		LoadTemplate: func() (prompt.Template, error) {
			return prompt.Load(templates, tmplIndex)
		},
		TopK: cfg.Retriever.TopK,
	})

	program := tea.NewProgram(tui.New(session), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running chat UI: %w", err)
	}
	return nil
}
