package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/daemon"
	"github.com/gerunddev/mdsite/internal/logger"
	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/state"
	"github.com/gerunddev/mdsite/internal/styles"
	"github.com/gerunddev/mdsite/internal/tui"
)

// Watch rebuilds the site incrementally on every interval. With --detach
// the watcher is started in the background.
func Watch(args []string) {
	if hasFlag(args, "--detach") {
		detach(args)
		return
	}

	errorStyle := styles.ErrorStyle

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Error loading config: "+err.Error()))
		os.Exit(1)
	}

	manifest, err := state.Load(config.ManifestPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Error loading manifest: "+err.Error()))
		os.Exit(1)
	}

	if running, pid, _ := daemon.IsRunning(); running && pid != os.Getpid() {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("✗ Watcher already running with PID %d", pid)))
		os.Exit(1)
	}
	if err := daemon.WritePID(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Error writing PID file: "+err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := daemon.RemovePID(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove PID file on shutdown: %v\n", err)
		}
	}()

	interactive := isTerminal()

	var log *logger.Logger
	if interactive {
		l, cleanup := setupLogger(cfg)
		defer cleanup()
		log = l
	} else if f, cleanup, err := openLogFile(cfg.LogFile); err == nil {
		// Headless watchers also log to stderr
		defer cleanup()
		log = logger.NewMultiLogger(os.Stderr, f)
	} else {
		log = logger.New(os.Stderr)
	}

	builder := site.NewBuilder(cfg, manifest)
	builder.SetLogger(log)
	builder.Incremental = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data := &tui.WatchData{
		PID:       os.Getpid(),
		StartTime: time.Now(),
		Interval:  cfg.Interval,
	}

	var p *tea.Program
	if interactive {
		p = tea.NewProgram(tui.InitWatchModel(), tea.WithInput(os.Stdin))
	}

	after := func(result *site.BuildResult, err error) {
		if saveErr := manifest.Save(config.ManifestPath()); saveErr != nil {
			log.ManifestError("save", saveErr)
		}
		if p == nil {
			return
		}

		snapshot := *data
		snapshot.Builds++
		snapshot.LastResult = result
		snapshot.LastErr = err
		if cfg.LogFile != "" {
			snapshot.LogLines, _, _ = ParseLogFile(cfg.LogFile, 10)
		}
		*data = snapshot
		p.Send(tui.WatchMsg{Data: &snapshot})
	}

	done := make(chan error, 1)
	go func() {
		done <- daemon.Watch(ctx, builder, cfg.Interval, log, after)
	}()

	if p != nil {
		if _, err := p.Run(); err != nil {
			fmt.Println(errorStyle.Render("✗ Error: " + err.Error()))
		}
		// Leaving the dashboard stops the watcher
		stop()
	}

	if err := <-done; err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}
	log.Info("watch shutdown complete")
}

// openLogFile opens the configured log file for appending
func openLogFile(path string) (*os.File, func(), error) {
	if path == "" {
		return nil, nil, fmt.Errorf("no log file configured")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// detach starts the watcher as a background process
func detach(args []string) {
	successStyle := styles.SuccessStyle
	errorStyle := styles.ErrorStyle
	dimStyle := styles.DimStyle

	watchArgs := []string{"watch"}
	for _, arg := range args {
		if arg != "--detach" {
			watchArgs = append(watchArgs, arg)
		}
	}

	if err := daemon.Daemonize(watchArgs); err != nil {
		fmt.Println(errorStyle.Render("✗ Failed to start watcher: " + err.Error()))
		os.Exit(1)
	}

	// Give it a moment to write its PID file
	time.Sleep(500 * time.Millisecond)

	running, pid, _ := daemon.IsRunning()
	if !running {
		fmt.Println(errorStyle.Render("✗ Watcher failed to start"))
		os.Exit(1)
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Watcher started with PID %d", pid)))
	fmt.Println(dimStyle.Render("  Run 'mdsite stop' to stop it"))
}

// Stop stops a running background watcher
func Stop() {
	successStyle := styles.SuccessStyle
	errorStyle := styles.ErrorStyle
	dimStyle := styles.DimStyle

	running, pid, _ := daemon.IsRunning()
	if !running {
		fmt.Println(dimStyle.Render("Watcher is not running"))
		return
	}

	fmt.Printf("Stopping watcher (PID %d)...\n", pid)

	if err := daemon.Stop(); err != nil {
		fmt.Println(errorStyle.Render("✗ Failed to stop watcher: " + err.Error()))
		os.Exit(1)
	}

	for i := 0; i < 10; i++ {
		time.Sleep(500 * time.Millisecond)
		running, _, _ = daemon.IsRunning()
		if !running {
			break
		}
	}

	if running {
		fmt.Println(errorStyle.Render("✗ Watcher did not stop gracefully"))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("✓ Watcher stopped"))
}
