package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/daemon"
	"github.com/gerunddev/mdsite/internal/logger"
	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/state"
	"github.com/gerunddev/mdsite/internal/tui"
)

// ParseLogFile reads the last N lines from the log file and extracts the
// time and page count of the most recent completed build
func ParseLogFile(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	var lastBuild time.Time
	generated := 0

	for i := len(recentLines) - 1; i >= 0; i-- {
		line := recentLines[i]
		if !strings.Contains(line, "build completed") {
			continue
		}
		// Format: 2025-11-27 14:11:57 INFO build completed pages_generated=3 ...
		if len(line) > 19 {
			if t, err := time.ParseInLocation(time.DateTime, line[:19], time.Local); err == nil {
				lastBuild = t
			}
		}
		if idx := strings.Index(line, "pages_generated="); idx != -1 {
			_, _ = fmt.Sscanf(line[idx:], "pages_generated=%d", &generated) //nolint:errcheck // best effort parsing
		}
		break
	}

	return recentLines, lastBuild, generated
}

// flagValue returns the value following name in args
func flagValue(args []string, name string) (string, bool) {
	for i, arg := range args {
		if arg == name && i+1 < len(args) {
			return args[i+1], true
		}
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, true
		}
	}
	return "", false
}

// hasFlag reports whether the boolean flag name is present in args
func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name {
			return true
		}
	}
	return false
}

// valueFlags take an argument, so the following word is not a positional
var valueFlags = map[string]bool{
	"--base":     true,
	"--workers":  true,
	"--interval": true,
	"--content":  true,
	"--public":   true,
	"--template": true,
}

// positional returns the first argument that is not a flag or a flag value
func positional(args []string) (string, bool) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if valueFlags[arg] {
			i++
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return arg, true
	}
	return "", false
}

// applyFlags overrides configuration values with command line flags
func applyFlags(cfg *config.Config, args []string) error {
	if v, ok := flagValue(args, "--content"); ok {
		cfg.ContentDir = v
	}
	if v, ok := flagValue(args, "--public"); ok {
		cfg.PublicDir = v
	}
	if v, ok := flagValue(args, "--template"); ok {
		cfg.Template = v
	}
	if v, ok := flagValue(args, "--base"); ok {
		cfg.BasePath = v
	}
	if v, ok := flagValue(args, "--workers"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid workers '%s': %w", v, err)
		}
		cfg.Workers = n
	}
	if v, ok := flagValue(args, "--interval"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid interval '%s': %w", v, err)
		}
		cfg.Interval = d
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// loadConfig loads the configuration file and applies flag overrides
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger returns the configured file logger, or a discarding logger
// when no log file is configured or it cannot be opened
func setupLogger(cfg *config.Config) (*logger.Logger, func()) {
	if cfg.LogFile == "" {
		return logger.Discard(), func() {}
	}
	l, cleanup, err := logger.NewFileLogger(cfg.LogFile)
	if err != nil {
		return logger.Discard(), func() {}
	}
	return l, cleanup
}

// isTerminal reports whether stdout is attached to a terminal
func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// collectStatus compares the content directory against the manifest of the
// last build
func collectStatus(cfg *config.Config, manifest *state.Manifest) (*tui.StatusData, error) {
	data := &tui.StatusData{
		ContentDir: cfg.ContentDir,
		PublicDir:  cfg.PublicDir,
		Template:   cfg.Template,
		BasePath:   cfg.BasePath,
		Workers:    cfg.Workers,
		BuildID:    manifest.BuildID,
		LastBuild:  manifest.LastBuild,
	}
	data.WatchRunning, data.WatchPID, _ = daemon.IsRunning()

	sources, err := site.ScanDirectory(cfg.ContentDir, ".md", cfg.ExcludePatterns)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to scan content directory: %w", err)
	}

	current := make(map[string]bool, len(sources))
	for _, src := range sources {
		current[src] = true

		output, err := site.OutputPath(cfg.ContentDir, cfg.PublicDir, src)
		if err != nil {
			return nil, err
		}
		info := tui.PageInfo{Source: src, Output: output, Built: manifest.GetMTime(src)}

		_, tracked := manifest.Output(src)
		changed, err := manifest.HasChanged(src)
		switch {
		case err != nil:
			return nil, fmt.Errorf("failed to check %s: %w", src, err)
		case !tracked:
			info.Status = tui.PageNew
		case changed:
			info.Status = tui.PageChanged
		case !fileExists(output):
			info.Status = tui.PageMissingOutput
		default:
			info.Status = tui.PageUpToDate
		}
		data.Pages = append(data.Pages, info)
	}

	for _, src := range manifest.Sources() {
		if current[src] {
			continue
		}
		output, _ := manifest.Output(src)
		data.Pages = append(data.Pages, tui.PageInfo{
			Source: src,
			Output: output,
			Status: tui.PageDeleted,
			Built:  manifest.GetMTime(src),
		})
	}

	return data, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
