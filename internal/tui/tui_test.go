package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/site"
)

func TestBuildModelCountsPages(t *testing.T) {
	var model tea.Model = InitBuildModel(3)

	events := []PageMsg{
		{Source: "content/a.md"},
		{Source: "content/b.md", Skipped: true},
		{Source: "content/c.md", Err: errors.New("boom")},
	}
	for _, ev := range events {
		model, _ = model.Update(ev)
	}

	m := model.(buildModel)
	if m.generated != 1 || m.skipped != 1 || m.failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", m.generated, m.skipped, m.failed)
	}
	view := m.View()
	if !strings.Contains(view, "3/3") {
		t.Errorf("View should show progress 3/3:\n%s", view)
	}
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		if !strings.Contains(view, name) {
			t.Errorf("View should list %s:\n%s", name, view)
		}
	}
}

func TestBuildModelRecentIsBounded(t *testing.T) {
	var model tea.Model = InitBuildModel(0)
	for i := 0; i < maxRecentPages+5; i++ {
		model, _ = model.Update(PageMsg{Source: "page.md"})
	}
	if got := len(model.(buildModel).recent); got != maxRecentPages {
		t.Errorf("recent has %d entries, want %d", got, maxRecentPages)
	}
}

func TestBuildModelComplete(t *testing.T) {
	start := time.Now()
	result := &site.BuildResult{
		Generated: []string{"a.md"},
		StartTime: start,
		EndTime:   start.Add(time.Second),
	}

	model, cmd := InitBuildModel(1).Update(BuildMsg{Result: result})
	if cmd == nil {
		t.Error("Completed build should quit the program")
	}
	if view := model.View(); !strings.Contains(view, "Generated 1 page(s)") {
		t.Errorf("Unexpected summary:\n%s", view)
	}
}

func TestSummary(t *testing.T) {
	start := time.Now()
	tests := []struct {
		name     string
		result   *site.BuildResult
		err      error
		contains []string
	}{
		{
			name:     "failed build",
			err:      errors.New("template missing"),
			contains: []string{"Build failed", "template missing"},
		},
		{
			name:     "nothing to build",
			result:   &site.BuildResult{Skipped: []string{"a.md"}, StartTime: start, EndTime: start},
			contains: []string{"Nothing to build"},
		},
		{
			name: "page errors",
			result: &site.BuildResult{
				Generated: []string{"a.md"},
				Skipped:   []string{"b.md"},
				Errors:    []error{&site.PageError{Source: "c.md", Err: errors.New("bad")}},
				StartTime: start,
				EndTime:   start,
			},
			contains: []string{"Generated 1 page(s)", "1 skipped", "1 error(s)", "c.md: bad"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summary(tt.result, tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Summary() missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func testStatusData() *StatusData {
	return &StatusData{
		ContentDir: "content",
		PublicDir:  "public",
		Template:   "template.html",
		BasePath:   "/",
		Workers:    4,
		Pages: []PageInfo{
			{Source: "content/index.md", Output: "public/index.html", Status: PageUpToDate},
			{Source: "content/about.md", Output: "public/about.html", Status: PageChanged},
			{Source: "content/new.md", Output: "public/new.html", Status: PageNew},
		},
	}
}

func TestRenderStatus(t *testing.T) {
	data := testStatusData()
	if got := data.PendingCount(); got != 2 {
		t.Errorf("PendingCount() = %d, want 2", got)
	}

	got := RenderStatus(data)
	for _, want := range []string{"content", "No build recorded yet", "Not running", "2 page(s) need a rebuild", "content/about.md", "content/new.md"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderStatus() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "content/index.md") {
		t.Errorf("Up to date pages should not be listed as pending:\n%s", got)
	}
}

func TestPageInfoBuiltLabel(t *testing.T) {
	built := time.Date(2025, 11, 27, 14, 11, 57, 0, time.Local)
	tests := []struct {
		name string
		info PageInfo
		want string
	}{
		{name: "untracked", info: PageInfo{Status: PageNew}, want: "-"},
		{name: "recorded", info: PageInfo{Status: PageUpToDate, Built: built}, want: "2025-11-27 14:11:57"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.BuiltLabel(); got != tt.want {
				t.Errorf("BuiltLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusModelDiff(t *testing.T) {
	var requested string
	var model tea.Model = InitStatusModel(func(source string) (string, error) {
		requested = source
		return "-old\n+new\n", nil
	})

	model, _ = model.Update(StatusMsg{Data: testStatusData()})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Selecting a page should load its diff")
	}

	msg := cmd()
	if requested != "content/index.md" {
		t.Errorf("Diff requested for %q, want content/index.md", requested)
	}
	model, _ = model.Update(msg)

	if view := model.View(); !strings.Contains(view, "Diff Preview: content/index.md") {
		t.Errorf("Expected diff view:\n%s", view)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(statusModel).showingDiff {
		t.Error("Esc should close the diff view")
	}
}

func TestWatchModel(t *testing.T) {
	var model tea.Model = InitWatchModel()
	if view := model.View(); !strings.Contains(view, "Waiting for first build") {
		t.Errorf("Unexpected initial view:\n%s", view)
	}

	model, _ = model.Update(WatchMsg{Data: &WatchData{
		PID:       42,
		StartTime: time.Now(),
		Interval:  2 * time.Second,
		Builds:    3,
		LastErr:   errors.New("template missing"),
		LogLines:  []string{"INFO build started"},
	}})

	view := model.View()
	for _, want := range []string{"42", "2s", "template missing", "INFO build started"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q:\n%s", want, view)
		}
	}
}
