// Package prompt loads message templates and assembles the structured
// prompt sent to the generation model.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"docsqa/internal/domain"
)

// chunkSeparator joins retrieved chunk texts into the context block.
const chunkSeparator = "\n\n"

// Template is a pair of message skeletons. The system template receives
// the retrieved context via {context}; the human template receives the
// current question via {question}.
type Template struct {
	System string `json:"system_template"`
	Human  string `json:"human_template"`
}

// LoadTemplates reads the template collection from a JSON file. Any
// problem with the file is a configuration error.
func LoadTemplates(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading prompt templates: %v", domain.ErrConfiguration, err)
	}
	var templates []Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("%w: parsing prompt templates %s: %v", domain.ErrConfiguration, path, err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: %s holds no templates", domain.ErrConfiguration, path)
	}
	return templates, nil
}

// Select picks a template by index (default collection index is 0).
func Select(templates []Template, index int) (Template, error) {
	if index < 0 || index >= len(templates) {
		return Template{}, fmt.Errorf("%w: template index %d out of range (have %d)", domain.ErrConfiguration, index, len(templates))
	}
	tmpl := templates[index]
	if tmpl.System == "" || tmpl.Human == "" {
		return Template{}, fmt.Errorf("%w: template %d has an empty message skeleton", domain.ErrConfiguration, index)
	}
	return tmpl, nil
}

// Load reads the collection at path and selects one template.
func Load(path string, index int) (Template, error) {
	templates, err := LoadTemplates(path)
	if err != nil {
		return Template{}, err
	}
	return Select(templates, index)
}

// Assemble builds the message sequence for one turn: the rendered system
// message, prior history turns oldest first, then the rendered human
// message with the current question. No truncation is applied here; a
// prompt over the provider limit fails at generation time.
func Assemble(tmpl Template, question string, chunks []domain.Chunk, history []domain.Turn) []domain.Message {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	render := strings.NewReplacer(
		"{context}", strings.Join(texts, chunkSeparator),
		"{question}", question,
	)

	messages := make([]domain.Message, 0, 2+2*len(history))
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: render.Replace(tmpl.System)})
	for _, turn := range history {
		messages = append(messages,
			domain.Message{Role: domain.RoleUser, Content: turn.Question},
			domain.Message{Role: domain.RoleAssistant, Content: turn.Answer},
		)
	}
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: render.Replace(tmpl.Human)})
	return messages
}
