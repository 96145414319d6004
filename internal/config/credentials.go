package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"docsqa/internal/domain"
)

// OpenAICredentials holds the API key for the embeddings and completion
// clients.
type OpenAICredentials struct {
	APIKey string `json:"api_key"`
}

// TelemetryCredentials is optional and only used to tag log output.
type TelemetryCredentials struct {
	Login string `json:"login"`
}

// Credentials is the parsed credentials file. Every field is named; the
// file format does not admit positional values.
type Credentials struct {
	OpenAI    OpenAICredentials     `json:"openai"`
	Telemetry *TelemetryCredentials `json:"telemetry,omitempty"`
}

// LoadCredentials reads and validates the credentials file. A missing
// file, unparseable JSON or an empty API key all fail as
// domain.ErrConfiguration.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading credentials %s: %v", domain.ErrConfiguration, path, err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: parsing credentials %s: %v", domain.ErrConfiguration, path, err)
	}
	creds.OpenAI.APIKey = strings.TrimSpace(creds.OpenAI.APIKey)
	if creds.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("%w: credentials %s: openai.api_key is empty", domain.ErrConfiguration, path)
	}
	return &creds, nil
}
