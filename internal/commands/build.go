package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/state"
	"github.com/gerunddev/mdsite/internal/styles"
	"github.com/gerunddev/mdsite/internal/tui"
)

// Build performs a one-shot site build
func Build(args []string) {
	titleStyle := styles.TitleStyle
	errorStyle := styles.ErrorStyle
	pathStyle := styles.PathStyle

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

	log, cleanup := setupLogger(cfg)
	defer cleanup()
	log.ConfigLoaded(cfg.ContentDir, cfg.PublicDir, cfg.Workers)

	builder := site.NewBuilder(cfg, manifest)
	builder.SetLogger(log)
	builder.Incremental = hasFlag(args, "--incremental")
	builder.FailFast = hasFlag(args, "--fail-fast")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *site.BuildResult
	if isTerminal() {
		fmt.Println(titleStyle.Render("mdsite Build"))
		fmt.Printf("%s → %s\n", pathStyle.Render(cfg.ContentDir), pathStyle.Render(cfg.PublicDir))

		total := 0
		if sources, err := site.ScanDirectory(cfg.ContentDir, ".md", cfg.ExcludePatterns); err == nil {
			total = len(sources)
		}

		p := tea.NewProgram(tui.InitBuildModel(total), tea.WithInput(os.Stdin))
		builder.OnPage = func(ev site.PageEvent) {
			p.Send(tui.PageMsg(ev))
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			result, err = builder.Build(ctx)
			p.Send(tui.BuildMsg{Result: result, Err: err})
		}()

		if _, runErr := p.Run(); runErr != nil {
			fmt.Println(errorStyle.Render("✗ Error: " + runErr.Error()))
			os.Exit(1)
		}
		// Quitting the progress view cancels a build still in flight
		stop()
		<-done
	} else {
		result, err = builder.Build(ctx)
		fmt.Print(tui.Summary(result, err))
	}

	if saveErr := manifest.Save(config.ManifestPath()); saveErr != nil {
		log.ManifestError("save", saveErr)
		fmt.Println(errorStyle.Render("✗ Error saving manifest: " + saveErr.Error()))
		os.Exit(1)
	}

	if err != nil || (result != nil && len(result.Errors) > 0) {
		os.Exit(1)
	}
}

// Render converts a single markdown document and writes the HTML fragment
// to stdout
func Render(args []string) {
	errorStyle := styles.ErrorStyle

	path, ok := positional(args)
	if !ok {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Usage: mdsite render <page.md>"))
		os.Exit(1)
	}

	html, err := renderFragment(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}

	fmt.Println(html)
}
