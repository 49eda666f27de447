package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/mdsite/internal/styles"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Comment))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Foreground))

	viewportStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(styles.Border)).
			Padding(1)
)

// Page states reported by status
const (
	PageUpToDate      = "up to date"
	PageChanged       = "changed"
	PageNew           = "new"
	PageMissingOutput = "missing output"
	PageDeleted       = "source deleted"
)

// PageInfo describes one source document and its generated page
type PageInfo struct {
	Source string
	Output string
	Status string
	// Built is the source mtime recorded by the last build, zero if untracked
	Built time.Time
}

// Pending reports whether the next build would touch this page
func (p PageInfo) Pending() bool {
	return p.Status != PageUpToDate
}

// BuiltLabel formats the recorded source mtime for display
func (p PageInfo) BuiltLabel() string {
	if p.Built.IsZero() {
		return "-"
	}
	return p.Built.Format(time.DateTime)
}

func (p PageInfo) icon() string {
	switch p.Status {
	case PageUpToDate:
		return styles.SuccessStyle.Render("✓")
	case PageDeleted:
		return styles.ErrorStyle.Render("✗")
	default:
		return styles.WarningStyle.Render("●")
	}
}

// StatusData holds all the information for the status display
type StatusData struct {
	ContentDir   string
	PublicDir    string
	Template     string
	BasePath     string
	Workers      int
	BuildID      string
	LastBuild    time.Time
	Pages        []PageInfo
	WatchRunning bool
	WatchPID     int
}

// PendingCount returns the number of pages the next build would touch
func (d *StatusData) PendingCount() int {
	n := 0
	for _, p := range d.Pages {
		if p.Pending() {
			n++
		}
	}
	return n
}

// StatusMsg is sent when status data is ready
type StatusMsg struct {
	Data *StatusData
	Err  error
}

// DiffMsg is sent when a diff preview is ready
type DiffMsg struct {
	Content string
	Err     error
}

type statusModel struct {
	spinner     spinner.Model
	table       table.Model
	viewport    viewport.Model
	data        *StatusData
	err         error
	scanning    bool
	showingDiff bool
	selected    *PageInfo
	diffFunc    func(source string) (string, error)
}

// InitStatusModel creates a new status display model. diffFunc renders the
// difference between the current and the regenerated page for a source.
func InitStatusModel(diffFunc func(string) (string, error)) statusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	columns := []table.Column{
		{Title: "Page", Width: 40},
		{Title: "Output", Width: 40},
		{Title: "Status", Width: 18},
		{Title: "Source mtime", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		BorderBottom(true).
		Bold(false)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(styles.Background)).
		Background(lipgloss.Color(styles.Yellow)).
		Bold(false)
	t.SetStyles(ts)

	vp := viewport.New(100, 20)
	vp.Style = viewportStyle

	return statusModel{
		spinner:  s,
		table:    t,
		viewport: vp,
		scanning: true,
		diffFunc: diffFunc,
	}
}

func (m statusModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-16, 5))
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6

	case tea.KeyMsg:
		if m.showingDiff {
			switch msg.String() {
			case "q", "esc":
				m.showingDiff = false
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			default:
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k", "down", "j":
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		case "enter", "d":
			if m.data == nil || len(m.data.Pages) == 0 {
				return m, nil
			}
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.data.Pages) {
				return m, nil
			}
			m.selected = &m.data.Pages[idx]
			m.showingDiff = true
			m.viewport.SetContent("Rendering " + m.selected.Source + "...")
			m.viewport.GotoTop()
			return m, m.loadDiff(m.selected.Source)
		}

	case StatusMsg:
		m.scanning = false
		m.data = msg.Data
		m.err = msg.Err

		if m.data != nil {
			rows := make([]table.Row, 0, len(m.data.Pages))
			for _, p := range m.data.Pages {
				rows = append(rows, table.Row{p.Source, p.Output, p.Status, p.BuiltLabel()})
			}
			m.table.SetRows(rows)
		}
		return m, nil

	case DiffMsg:
		content := msg.Content
		switch {
		case msg.Err != nil:
			content = styles.ErrorStyle.Render("✗ " + msg.Err.Error())
		case content == "":
			content = styles.SuccessStyle.Render("✓ Page is up to date")
		}
		m.viewport.SetContent(content)
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.scanning {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m statusModel) loadDiff(source string) tea.Cmd {
	return func() tea.Msg {
		if m.diffFunc == nil {
			return DiffMsg{}
		}
		content, err := m.diffFunc(source)
		return DiffMsg{Content: content, Err: err}
	}
}

func (m statusModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("mdsite Status"))
	b.WriteString("\n\n")

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Error: "+m.err.Error()) + "\n"
	}

	if m.scanning {
		b.WriteString(fmt.Sprintf("%s Scanning content...\n", m.spinner.View()))
		return b.String()
	}

	if m.data == nil {
		return b.String()
	}

	if m.showingDiff && m.selected != nil {
		b.WriteString(labelStyle.Render("Diff Preview: " + m.selected.Source))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • esc/q back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(RenderStatus(m.data))

	if len(m.data.Pages) > 0 {
		b.WriteString(labelStyle.Render("Pages"))
		b.WriteString("\n")
		b.WriteString(styles.TableStyle.Render(m.table.View()))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • enter/d diff • q/ctrl+c quit"))
	} else {
		b.WriteString(styles.HelpStyle.Render("q/ctrl+c quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// RenderStatus renders the configuration and build summary sections. It is
// also used as the plain output when stdout is not a terminal.
func RenderStatus(d *StatusData) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("Configuration"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Content directory: %s\n", styles.PathStyle.Render(d.ContentDir)))
	b.WriteString(fmt.Sprintf("  Public directory:  %s\n", styles.PathStyle.Render(d.PublicDir)))
	b.WriteString(fmt.Sprintf("  Template:          %s\n", styles.PathStyle.Render(d.Template)))
	b.WriteString(fmt.Sprintf("  Base path:         %s\n", valueStyle.Render(d.BasePath)))
	b.WriteString(fmt.Sprintf("  Workers:           %s\n", valueStyle.Render(fmt.Sprintf("%d", d.Workers))))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Last Build"))
	b.WriteString("\n")
	if d.BuildID == "" {
		b.WriteString(fmt.Sprintf("  %s\n", styles.DimStyle.Render("No build recorded yet")))
	} else {
		b.WriteString(fmt.Sprintf("  Build ID: %s\n", valueStyle.Render(d.BuildID)))
		b.WriteString(fmt.Sprintf("  Finished: %s ago\n",
			valueStyle.Render(time.Since(d.LastBuild).Round(time.Second).String())))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Watcher"))
	b.WriteString("\n")
	if d.WatchRunning {
		b.WriteString(fmt.Sprintf("  %s\n", styles.SuccessStyle.Render(fmt.Sprintf("● Running (PID %d)", d.WatchPID))))
	} else {
		b.WriteString(fmt.Sprintf("  %s\n", styles.DimStyle.Render("○ Not running")))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Pending Changes"))
	b.WriteString("\n")
	if pending := d.PendingCount(); pending == 0 {
		b.WriteString(fmt.Sprintf("  %s\n", styles.SuccessStyle.Render("✓ Site is up to date")))
	} else {
		b.WriteString(fmt.Sprintf("  %s\n", styles.HighlightStyle.Render(fmt.Sprintf("● %d page(s) need a rebuild", pending))))
		for _, p := range d.Pages {
			if p.Pending() {
				b.WriteString(fmt.Sprintf("    %s %s %s\n", p.icon(), styles.PathStyle.Render(p.Source), styles.DimStyle.Render("("+p.Status+")")))
			}
		}
	}
	b.WriteString("\n")

	return b.String()
}
