package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsqa/internal/domain"
)

func writeTemplates(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompt_template.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTemplates(t *testing.T) {
	path := writeTemplates(t, `[
		{"system_template": "Context:\n{context}", "human_template": "{question}"},
		{"system_template": "Terse. {context}", "human_template": "Q: {question}"}
	]`)

	templates, err := LoadTemplates(path)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Context:\n{context}", templates[0].System)

	tmpl, err := Select(templates, 1)
	require.NoError(t, err)
	assert.Equal(t, "Q: {question}", tmpl.Human)
}

func TestLoadTemplatesMissingFile(t *testing.T) {
	_, err := LoadTemplates(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadTemplatesBadJSON(t *testing.T) {
	path := writeTemplates(t, `{"not": "an array"}`)
	_, err := LoadTemplates(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadTemplatesEmpty(t *testing.T) {
	path := writeTemplates(t, `[]`)
	_, err := LoadTemplates(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSelectOutOfRange(t *testing.T) {
	templates := []Template{{System: "s", Human: "h"}}
	_, err := Select(templates, 3)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSelectEmptySkeleton(t *testing.T) {
	templates := []Template{{System: "", Human: "h"}}
	_, err := Select(templates, 0)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestAssemble(t *testing.T) {
	tmpl := Template{
		System: "Answer from this context:\n{context}",
		Human:  "{question}",
	}
	chunks := []domain.Chunk{
		{ID: "a:0", Text: "wandb.log accepts images."},
		{ID: "a:1", Text: "wandb.log accepts videos."},
	}
	history := []domain.Turn{
		{Question: "how do i log images?", Answer: "use wandb.log with an image."},
	}

	messages := Assemble(tmpl, "what about videos?", chunks, history)
	require.Len(t, messages, 4)

	assert.Equal(t, domain.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "wandb.log accepts images.\n\nwandb.log accepts videos.")

	// History goes ahead of the current turn, oldest first.
	assert.Equal(t, domain.RoleUser, messages[1].Role)
	assert.Equal(t, "how do i log images?", messages[1].Content)
	assert.Equal(t, domain.RoleAssistant, messages[2].Role)
	assert.Equal(t, "use wandb.log with an image.", messages[2].Content)

	assert.Equal(t, domain.RoleUser, messages[3].Role)
	assert.Equal(t, "what about videos?", messages[3].Content)
}

func TestAssembleNoChunksNoHistory(t *testing.T) {
	tmpl := Template{System: "ctx: {context}", Human: "{question}"}
	messages := Assemble(tmpl, "hello?", nil, nil)
	require.Len(t, messages, 2)
	assert.Equal(t, "ctx: ", messages[0].Content)
	assert.Equal(t, "hello?", messages[1].Content)
}
