package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/styles"
)

// WatchData holds the state shown by the watch dashboard
type WatchData struct {
	PID        int
	StartTime  time.Time
	Interval   time.Duration
	Builds     int
	LastResult *site.BuildResult
	LastErr    error
	LogLines   []string
}

// WatchMsg is sent after every rebuild
type WatchMsg struct {
	Data *WatchData
}

type watchModel struct {
	data *WatchData
}

// InitWatchModel creates a new watch dashboard model
func InitWatchModel() watchModel {
	return watchModel{}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case WatchMsg:
		m.data = msg.Data
		return m, nil
	}

	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("mdsite Watch"))
	b.WriteString("\n\n")

	if m.data == nil {
		b.WriteString(styles.DimStyle.Render("Waiting for first build..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(labelStyle.Render("Watcher"))
	b.WriteString("\n")
	uptime := time.Since(m.data.StartTime).Round(time.Second)
	b.WriteString(fmt.Sprintf("  Status:   %s\n", styles.SuccessStyle.Render("● Running")))
	b.WriteString(fmt.Sprintf("  PID:      %s\n", valueStyle.Render(fmt.Sprintf("%d", m.data.PID))))
	b.WriteString(fmt.Sprintf("  Uptime:   %s\n", valueStyle.Render(uptime.String())))
	b.WriteString(fmt.Sprintf("  Interval: %s\n", valueStyle.Render(m.data.Interval.String())))
	b.WriteString(fmt.Sprintf("  Builds:   %s\n", valueStyle.Render(fmt.Sprintf("%d", m.data.Builds))))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Last Build"))
	b.WriteString("\n")
	if m.data.LastErr != nil || m.data.LastResult != nil {
		for _, line := range strings.Split(strings.TrimRight(Summary(m.data.LastResult, m.data.LastErr), "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	} else {
		b.WriteString(fmt.Sprintf("  %s\n", styles.DimStyle.Render("No build completed yet")))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Recent Logs"))
	b.WriteString("\n")
	if len(m.data.LogLines) > 0 {
		for _, line := range m.data.LogLines {
			b.WriteString("  " + line + "\n")
		}
	} else {
		b.WriteString(styles.HelpStyle.Render("  No logs available"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.HelpStyle.Render("q quit"))
	b.WriteString("\n")

	return b.String()
}
