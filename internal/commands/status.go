package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/diff"
	"github.com/gerunddev/mdsite/internal/state"
	"github.com/gerunddev/mdsite/internal/styles"
	"github.com/gerunddev/mdsite/internal/tui"
)

// Status displays which pages the next build would regenerate
func Status(args []string) {
	errorStyle := styles.ErrorStyle

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Println(errorStyle.Render("✗ Error loading config: " + err.Error()))
		os.Exit(1)
	}

	manifest, err := state.Load(config.ManifestPath())
	if err != nil {
		fmt.Println(errorStyle.Render("✗ Error loading manifest: " + err.Error()))
		os.Exit(1)
	}

	if !isTerminal() {
		data, err := collectStatus(cfg, manifest)
		if err != nil {
			fmt.Println(errorStyle.Render("✗ Error: " + err.Error()))
			os.Exit(1)
		}
		fmt.Print(tui.RenderStatus(data))
		return
	}

	diffFunc := func(source string) (string, error) {
		return diff.Generate(cfg, source, diff.FormatRendered)
	}

	p := tea.NewProgram(tui.InitStatusModel(diffFunc), tea.WithAltScreen())

	go func() {
		data, err := collectStatus(cfg, manifest)
		p.Send(tui.StatusMsg{Data: data, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		fmt.Println(errorStyle.Render("✗ Error: " + err.Error()))
		os.Exit(1)
	}
}
