package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/futig/issue-assistant/internal/entity"
)

// AssistantPort is the TUI-facing subset of the assistant use case
type AssistantPort interface {
	Turn(ctx context.Context, conversation *entity.Conversation, question string) (*entity.TurnResult, error)
	NextModel(conversation *entity.Conversation) string
}

// answerMsg carries the outcome of a turn back into the event loop
type answerMsg struct {
	result *entity.TurnResult
	err    error
}

const sidebarWidth = 34

// Model is the Bubble Tea model. Each input event performs at most one
// conversation transition and the next View renders its result.
type Model struct {
	ctx          context.Context
	service      AssistantPort
	conversation *entity.Conversation
	title        string

	input    textinput.Model
	viewport viewport.Model
	status   string
	lastErr  string
	busy     bool
	ready    bool
}

// New creates a TUI bound to an existing conversation
func New(ctx context.Context, service AssistantPort, conversation *entity.Conversation, title string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe your issue and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		ctx:          ctx,
		service:      service,
		conversation: conversation,
		title:        title,
		input:        ti,
		viewport:     viewport.New(0, 0),
		status:       "Ready. enter: ask · ctrl+r: reset · ctrl+h: history · tab: model · ctrl+c: quit",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, query box, spacer
		m.viewport.Width = max(20, msg.Width-sidebarWidth-4)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case answerMsg:
		m.busy = false
		m.input.Focus()
		switch {
		case msg.err != nil:
			m.lastErr = msg.err.Error()
			m.status = "Question rejected"
		case msg.result.Err != nil:
			m.lastErr = msg.result.Err.Error()
			m.status = "Could not answer, try again"
		default:
			m.lastErr = ""
			m.status = "Answered"
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch msg.String() {
		case "enter":
			return m.ask()
		case "ctrl+r":
			if m.busy {
				m.status = "Wait for the current answer before resetting"
				return m, nil
			}
			if err := m.conversation.Reset(); err != nil {
				m.status = "Wait for the current answer before resetting"
				return m, nil
			}
			m.lastErr = ""
			m.status = "Chat history cleared"
			m.refresh()
			return m, nil
		case "ctrl+h":
			_, use := m.conversation.Settings()
			m.conversation.SetUseHistory(!use)
			m.status = "Chat history " + onOff(!use)
			return m, nil
		case "tab":
			if m.busy {
				return m, nil
			}
			m.status = "Model: " + m.service.NextModel(m.conversation)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return m, nil
	}

	m.busy = true
	m.input.Reset()
	m.input.Blur()
	m.status = "Thinking…"

	ctx, service, conversation := m.ctx, m.service, m.conversation
	return m, func() tea.Msg {
		result, err := service.Turn(ctx, conversation, question)
		return answerMsg{result: result, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.conversation.Turns(), m.lastErr, m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render(m.title)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	sidebar := sidebarStyle.Height(m.viewport.Height).Render(m.renderSidebar())
	body := lipgloss.JoinHorizontal(lipgloss.Top, transcript, sidebar)
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderSidebar() string {
	model, useHistory := m.conversation.Settings()

	var b strings.Builder
	fmt.Fprintf(&b, "Model:   %s\n", model)
	fmt.Fprintf(&b, "History: %s\n", onOff(useHistory))
	fmt.Fprintf(&b, "State:   %s\n", m.conversation.State())
	b.WriteString("\n")
	b.WriteString(renderFeedback(m.conversation.Feedback()))
	return b.String()
}

// renderFeedback shows the scores of the latest evaluated turn
func renderFeedback(records []entity.FeedbackRecord) string {
	if len(records) == 0 {
		return mutedStyle.Render("No feedback yet")
	}

	last := records[len(records)-1].Timestamp
	var latest []entity.FeedbackRecord
	for _, r := range records {
		if r.Timestamp.Equal(last) {
			latest = append(latest, r)
		}
	}
	sort.Slice(latest, func(i, j int) bool { return latest[i].Name < latest[j].Name })

	lines := []string{"Feedback " + last.Format("15:04:05")}
	for _, r := range latest {
		lines = append(lines, fmt.Sprintf("%-18s %.2f", r.Name, r.Score))
	}
	return strings.Join(lines, "\n")
}

func renderTranscript(turns []entity.Turn, lastErr string, width int) string {
	if len(turns) == 0 && lastErr == "" {
		return mutedStyle.Render("Ask a question about a software issue.")
	}

	wrap := lipgloss.NewStyle().Width(max(10, width-2))
	parts := make([]string, 0, len(turns)+1)
	for _, t := range turns {
		label := userStyle.Render("You")
		if t.Role == entity.RoleAssistant {
			label = assistantStyle.Render("Assistant")
		}
		parts = append(parts, label+"\n"+wrap.Render(t.Content))
	}
	if lastErr != "" {
		parts = append(parts, errorStyle.Render("Error: "+lastErr))
	}
	return strings.Join(parts, "\n\n")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sidebarStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(sidebarWidth)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
