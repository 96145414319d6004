// Package cli wires the application commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docsqa/internal/config"
)

var (
	cfgPath string
	verbose bool
	apiKey  string

	cfg *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "docsqa",
	Short: "Documentation Q&A over a local vector index",
	Long: `docsqa ingests markdown documentation into a local vector index and
answers questions about it in a terminal chat, citing the document
chunks each answer was grounded on.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real env vars win over it.
		_ = godotenv.Load()

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		if cfgPath != "" {
			cfg, err = config.Load(cfgPath)
		} else {
			cfg, _, err = config.LoadDefault()
		}
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config YAML (default ./config.yaml, then ~/.config/docsqa/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable info logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY and the credentials file)")
}

// resolveAPIKey picks the key from the flag, then the environment, then
// the credentials file.
func resolveAPIKey() (string, error) {
	if key := strings.TrimSpace(apiKey); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return key, nil
	}
	creds, err := config.LoadCredentials(cfg.Paths.Credentials)
	if err != nil {
		return "", fmt.Errorf("no API key: pass --api-key, set OPENAI_API_KEY, or provide a credentials file: %w", err)
	}
	if creds.Telemetry != nil && creds.Telemetry.Login != "" {
		slog.Info("using credentials file", "login", creds.Telemetry.Login)
	}
	return creds.OpenAI.APIKey, nil
}
