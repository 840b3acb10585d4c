package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tickMsg is emitted once per second by the cooperative timer.
type tickMsg time.Time

// Styles per urgency level. Escalation is purely visual; the state machine
// does not care.
//
//nolint:gochecknoglobals // Render styles are static.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	messageStyle  = lipgloss.NewStyle().Faint(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	elevatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// progressBarWidth is the default width before the terminal reports its size.
const progressBarWidth = 40

// model drives the on-screen countdown. Ticks and key events arrive on the
// same loop, so the countdown is never mutated concurrently.
type model struct {
	countdown *Countdown
	message   string
	bar       progress.Model
}

// newModel builds the presentation model around an existing countdown.
func newModel(countdown *Countdown, message string) model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = progressBarWidth

	return model{
		countdown: countdown,
		message:   message,
		bar:       bar,
	}
}

// tick schedules the next one-second tick.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the cooperative timer.
func (m model) Init() tea.Cmd {
	return tick()
}

// Update advances the state machine on ticks and dismisses on any of the
// close keys. Both terminal states quit the program.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.countdown.Tick() == StateExpired {
			return m, tea.Quit
		}

		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "q", "ctrl+c":
			m.countdown.Dismiss()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 0 {
			m.bar.Width = width
		}

		return m, nil
	}

	return m, nil
}

// View renders the notification with the mm:ss clock and an elapsed bar.
func (m model) View() string {
	if m.countdown.State() != StateRunning {
		return ""
	}

	clockStyle := normalStyle

	switch m.countdown.Urgency() {
	case UrgencyElevated:
		clockStyle = elevatedStyle
	case UrgencyCritical:
		clockStyle = criticalStyle
	case UrgencyNormal:
	}

	elapsed := 0.0
	if total := m.countdown.Total(); total > 0 {
		elapsed = float64(total-m.countdown.Remaining()) / float64(total)
	}

	return fmt.Sprintf("\n  %s\n\n  %s\n\n  %s  %s\n\n  %s\n",
		titleStyle.Render("Installation is running in the background"),
		messageStyle.Render(m.message),
		clockStyle.Render(m.countdown.Clock()),
		m.bar.ViewAs(elapsed),
		helpStyle.Render("press enter to close this message"),
	)
}

// Present shows the blocking countdown notification and returns its final
// state. An error means the presentation itself could not run (for example,
// no interactive terminal); the caller downgrades that to a warning.
func Present(ctx context.Context, message string, total time.Duration) (State, error) {
	countdown := NewCountdown(int(total / time.Second))

	program := tea.NewProgram(newModel(countdown, message), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return countdown.State(), fmt.Errorf("present countdown: %w", err)
	}

	return countdown.State(), nil
}
