package daemon

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/logger"
	"github.com/gerunddev/mdsite/internal/site"
)

// PIDFile returns the path to the watch process PID file.
// Can be overridden for testing
var PIDFile = func() string {
	return filepath.Join(filepath.Dir(config.ConfigPath()), "watch.pid")
}

// WritePID writes the current process ID to the PID file
func WritePID() error {
	pidFile := PIDFile()

	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	content := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(pidFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	return nil
}

// ReadPID reads the watch process PID from the PID file
func ReadPID() (int, error) {
	content, err := os.ReadFile(PIDFile())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("watcher not running (PID file not found)")
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}

	return pid, nil
}

// RemovePID removes the PID file
func RemovePID() error {
	if err := os.Remove(PIDFile()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning checks if a watch process is alive. A stale PID file is removed.
func IsRunning() (bool, int, time.Time) {
	pid, err := ReadPID()
	if err != nil {
		return false, 0, time.Time{}
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, time.Time{}
	}

	// Signal 0 only checks that the process exists
	if err := process.Signal(syscall.Signal(0)); err != nil {
		if cleanupErr := RemovePID(); cleanupErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove stale PID file: %v\n", cleanupErr)
		}
		return false, 0, time.Time{}
	}

	// PID file modification time approximates the start time
	var startTime time.Time
	if info, err := os.Stat(PIDFile()); err == nil {
		startTime = info.ModTime()
	}

	return true, pid, startTime
}

// Stop stops the watch process by sending SIGTERM
func Stop() error {
	running, pid, _ := IsRunning()
	if !running {
		return fmt.Errorf("watcher is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	return nil
}

// Daemonize re-executes the current binary with args as a detached process
func Daemonize(args []string) error {
	if running, pid, _ := IsRunning(); running {
		return fmt.Errorf("watcher already running with PID %d", pid)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to release watcher process: %w", err)
	}

	return nil
}

// Rebuilder runs one site build
type Rebuilder interface {
	Build(ctx context.Context) (*site.BuildResult, error)
}

// Watch builds the site immediately and then on every interval tick until
// ctx is cancelled. after, if set, is called with the outcome of each build.
func Watch(ctx context.Context, b Rebuilder, interval time.Duration, log *logger.Logger,
	after func(*site.BuildResult, error)) error {
	if interval <= 0 {
		return fmt.Errorf("invalid watch interval: %v", interval)
	}

	log.Info("watch started",
		"pid", os.Getpid(),
		"interval", interval)

	rebuild := func() {
		result, err := b.Build(ctx)
		if err != nil && ctx.Err() == nil {
			log.Error("build failed", "error", err)
		}
		if after != nil {
			after(result, err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rebuild()
	for {
		select {
		case <-ticker.C:
			rebuild()
		case <-ctx.Done():
			log.Info("watch stopping")
			return nil
		}
	}
}
