// Package tui is the Bubble Tea chat front end.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docsqa/internal/domain"
)

// SessionPort is the TUI-facing subset of the chat session.
type SessionPort interface {
	Answer(ctx context.Context, question string, history []domain.Turn) (domain.Answer, []domain.Turn, error)
}

// answerMsg carries the result of one asynchronous question.
type answerMsg struct {
	answer  domain.Answer
	history []domain.Turn
	err     error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	session     SessionPort
	input       textinput.Model
	viewport    viewport.Model
	history     []domain.Turn
	lastSources []domain.Chunk
	status      string
	showSources bool
	waiting     bool
	ready       bool
}

// New creates a new chat model instance.
func New(session SessionPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about the docs and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{session: session, input: ti, viewport: vp, status: "Ready. Ctrl+S toggles sources."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refreshTranscript()
		return m, nil
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.history = msg.history
			m.lastSources = msg.answer.Sources
			m.status = fmt.Sprintf("Answered. %d source chunks. Ctrl+S toggles sources.", len(msg.answer.Sources))
		}
		m.refreshTranscript()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.input.SetValue("")
				m.waiting = true
				m.status = "Thinking..."
				return m, m.askCmd(q)
			}
		case "ctrl+s":
			m.showSources = !m.showSources
			m.refreshTranscript()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// askCmd runs the question off the Update loop; the result comes back as
// an answerMsg.
func (m Model) askCmd(question string) tea.Cmd {
	session := m.session
	history := m.history
	return func() tea.Msg {
		answer, updated, err := session.Answer(context.Background(), question, history)
		return answerMsg{answer: answer, history: updated, err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Docs Q&A")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, turn := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: "+turn.Question) + "\n")
		b.WriteString(turn.Answer)
	}
	if m.showSources && len(m.lastSources) > 0 {
		b.WriteString("\n\n" + sourceStyle.Render("Sources:"))
		for _, chunk := range m.lastSources {
			b.WriteString("\n" + sourceStyle.Render(fmt.Sprintf("  %s (chunk %d)", chunk.Source, chunk.Position)))
		}
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
