// Package bubbletea provides the interactive override prompt for failing
// design reviews, built on the Bubble Tea framework.
package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leohentschker/vslint"
)

// MaxAttempts is how many invalid keystrokes are tolerated before the prompt
// gives up with DecisionExhausted.
const MaxAttempts = 5

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Faint(true)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// ConfirmModel is the Bubble Tea model for a single yes/no override prompt.
// "y" confirms the failure, "n" overrides it to passing, and anything else
// consumes one of the remaining attempts.
type ConfirmModel struct {
	question  string
	remaining int
	decision  vslint.Decision
	done      bool
	keymap    ConfirmKeyMap
}

// NewConfirmModel creates a ConfirmModel for the given question.
func NewConfirmModel(question string) ConfirmModel {
	return ConfirmModel{
		question:  question,
		remaining: MaxAttempts,
		keymap:    DefaultConfirmKeyMap(),
	}
}

// Decision returns the outcome once the prompt has finished.
func (m ConfirmModel) Decision() vslint.Decision {
	return m.decision
}

// Done reports whether the prompt has finished.
func (m ConfirmModel) Done() bool {
	return m.done
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keymap.Accept):
		m.decision = vslint.DecisionAccepted
		m.done = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keymap.Reject):
		m.decision = vslint.DecisionRejected
		m.done = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keymap.Interrupt):
		// Treat interrupt as confirming the failure: never silently
		// rewrite a snapshot to passing.
		m.decision = vslint.DecisionAccepted
		m.done = true
		return m, tea.Quit

	default:
		m.remaining--
		if m.remaining <= 0 {
			m.decision = vslint.DecisionExhausted
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	}
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}

	var s strings.Builder
	s.WriteString(questionStyle.Render(m.question))
	s.WriteString("\n")
	s.WriteString(hintStyle.Render("[y] fail the test  [n] override to passing"))
	s.WriteString("\n")
	if m.remaining < MaxAttempts {
		s.WriteString(warnStyle.Render(fmt.Sprintf("Unrecognized input, %d attempts remaining", m.remaining)))
		s.WriteString("\n")
	}
	return s.String()
}

// Compile-time interface verification.
var _ vslint.Prompter = (*Prompter)(nil)

// Prompter implements vslint.Prompter by running a ConfirmModel in a Bubble
// Tea program on the terminal.
type Prompter struct{}

// NewPrompter creates a new Prompter.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// Confirm displays the question and blocks until the user answers or runs
// out of attempts.
func (p *Prompter) Confirm(ctx context.Context, question string) (vslint.Decision, error) {
	program := tea.NewProgram(NewConfirmModel(question), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return vslint.DecisionAccepted, fmt.Errorf("run override prompt: %w", err)
	}
	m, ok := final.(ConfirmModel)
	if !ok || !m.Done() {
		return vslint.DecisionAccepted, fmt.Errorf("override prompt exited without a decision")
	}
	return m.Decision(), nil
}
