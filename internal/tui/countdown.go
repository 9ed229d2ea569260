package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/output"
)

// TimerProvider returns the current timer for the foreground room, nil
// when none is running. Polled once per second.
type TimerProvider func() *model.TreatmentTimer

// tickMsg drives the once-per-second refresh.
type tickMsg time.Time

// CountdownModel is the bubbletea model for the live status view.
type CountdownModel struct {
	provider TimerProvider
	timer    *model.TreatmentTimer
	total    time.Duration
	width    int
	done     bool
}

// NewCountdownModel creates a countdown view polling the given provider.
func NewCountdownModel(provider TimerProvider) CountdownModel {
	width := 60
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	m := CountdownModel{
		provider: provider,
		width:    width,
	}
	m.timer = provider()
	if m.timer != nil {
		m.total = time.Until(m.timer.EndTime)
	}
	return m
}

// Init starts the tick loop.
func (m CountdownModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m CountdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.timer = m.provider()
		if m.timer == nil {
			m.done = true
			return m, tea.Quit
		}
		remaining := time.Until(m.timer.EndTime)
		if m.total < remaining {
			// A snooze extended the deadline; rescale the bar.
			m.total = remaining
		}
		if remaining <= 0 {
			m.done = true
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

// View renders the countdown.
func (m CountdownModel) View() string {
	var content strings.Builder

	if m.timer == nil {
		if m.done {
			content.WriteString(StyleDone.Render("Timer finished"))
		} else {
			content.WriteString(StyleSubtitle.Render("No treatment timer running"))
		}
		return StyleBox.Render(content.String()) + "\n"
	}

	room := m.timer.RoomName
	if room == "" {
		room = "Treatment timer"
	}
	content.WriteString(StyleTitle.Render(room))
	content.WriteString("\n\n")

	remaining := time.Until(m.timer.EndTime)
	style := StyleCountdown
	if remaining < time.Minute {
		style = StyleCountdownLow
	}
	content.WriteString(style.Render(output.FormatDuration(remaining)))
	content.WriteString("\n\n")

	content.WriteString(StyleProgress.Render(m.progressBar(remaining, 30)))
	content.WriteString("\n\n")

	content.WriteString(StyleSubtitle.Render(fmt.Sprintf("Ends at %s", output.FormatTime(m.timer.EndTime))))
	content.WriteString("\n")
	content.WriteString(StyleSubtitle.Render(fmt.Sprintf("%d item(s) gated", len(m.timer.AssociatedItemIDs))))
	content.WriteString("\n\n")
	content.WriteString(StyleSubtitle.Render("Press q to quit"))

	return StyleBox.Render(content.String()) + "\n"
}

// progressBar renders elapsed progress over the timer's span.
func (m CountdownModel) progressBar(remaining time.Duration, width int) string {
	progress := 0.0
	if m.total > 0 {
		progress = 1.0 - float64(remaining)/float64(m.total)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d%%", bar, int(progress*100))
}

// RunCountdown runs the live countdown until the timer ends or the user
// quits.
func RunCountdown(provider TimerProvider) error {
	p := tea.NewProgram(NewCountdownModel(provider))
	_, err := p.Run()
	return err
}
