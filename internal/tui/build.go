package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/styles"
)

// maxRecentPages is how many finished pages the progress view lists
const maxRecentPages = 8

// PageMsg is sent when a worker finishes a page
type PageMsg site.PageEvent

// BuildMsg is sent when the build completes
type BuildMsg struct {
	Result *site.BuildResult
	Err    error
}

// buildModel is the Bubble Tea model for the build progress display
type buildModel struct {
	spinner   spinner.Model
	total     int
	generated int
	skipped   int
	failed    int
	recent    []string
	complete  bool
	result    *site.BuildResult
	err       error
}

// InitBuildModel creates a new build progress model for total pages.
// A total of zero hides the counter.
func InitBuildModel(total int) buildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return buildModel{
		spinner: s,
		total:   total,
	}
}

func (m buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case PageMsg:
		switch {
		case msg.Err != nil:
			m.failed++
		case msg.Skipped:
			m.skipped++
		default:
			m.generated++
		}
		line := styles.PageMark(msg.Err, msg.Skipped) + " " + filepath.Base(msg.Source)
		m.recent = append(m.recent, line)
		if len(m.recent) > maxRecentPages {
			m.recent = m.recent[len(m.recent)-maxRecentPages:]
		}
		return m, nil

	case BuildMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m buildModel) View() string {
	if m.complete {
		return Summary(m.result, m.err)
	}

	var b strings.Builder
	done := m.generated + m.skipped + m.failed
	status := fmt.Sprintf("Building pages... %d done", done)
	if m.total > 0 {
		status = fmt.Sprintf("Building pages... %d/%d", done, m.total)
	}
	b.WriteString(fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), status))
	for _, line := range m.recent {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// Summary renders the final build outcome
func Summary(result *site.BuildResult, err error) string {
	if err != nil {
		return styles.ErrorStyle.Render("✗ Build failed: "+err.Error()) + "\n"
	}
	if result == nil {
		return ""
	}

	duration := styles.DimStyle.Render(fmt.Sprintf("Completed in %v",
		result.EndTime.Sub(result.StartTime).Round(time.Millisecond)))

	if len(result.Generated) == 0 && len(result.Errors) == 0 {
		return styles.SuccessStyle.Render("✓ Nothing to build") + "\n" + duration + "\n"
	}

	msg := styles.SuccessStyle.Render(fmt.Sprintf("✓ Generated %d page(s)", len(result.Generated)))
	if len(result.Skipped) > 0 {
		msg += ", " + styles.WarningStyle.Render(fmt.Sprintf("%d skipped", len(result.Skipped)))
	}
	if len(result.Errors) > 0 {
		msg += ", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(result.Errors)))
	}
	msg += "\n"
	for _, e := range result.Errors {
		msg += "  " + styles.ErrorStyle.Render(styles.MarkError) + " " + e.Error() + "\n"
	}
	msg += duration + "\n"

	return msg
}
