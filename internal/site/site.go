package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/frontmatter"
	"github.com/gerunddev/mdsite/internal/logger"
	"github.com/gerunddev/mdsite/internal/state"
)

// Builder generates the public site from the content tree
type Builder struct {
	config   *config.Config
	manifest *state.Manifest
	log      *logger.Logger

	// Incremental keeps the public dir and regenerates only changed pages
	Incremental bool
	// FailFast aborts the build on the first page error
	FailFast bool
	// OnPage, if set, is called from the worker goroutines after each page
	OnPage func(PageEvent)
}

// PageEvent describes the outcome for one source document
type PageEvent struct {
	Source  string
	Output  string
	Skipped bool
	Reason  string
	Err     error
}

// NewBuilder creates a new builder instance
func NewBuilder(cfg *config.Config, manifest *state.Manifest) *Builder {
	return &Builder{
		config:   cfg,
		manifest: manifest,
		log:      logger.Discard(),
	}
}

// SetLogger sets the logger for the builder
func (b *Builder) SetLogger(l *logger.Logger) {
	b.log = l
}

// BuildResult represents the result of a build
type BuildResult struct {
	BuildID   string
	Generated []string
	Skipped   []string
	Removed   []string
	Errors    []error
	StartTime time.Time
	EndTime   time.Time
}

// Build copies static assets and generates a page for every markdown
// document in the content directory
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	result := &BuildResult{
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
	}()

	result.BuildID = b.manifest.StartBuild()
	b.log.BuildStarted(result.BuildID, b.config.ContentDir, b.config.PublicDir)

	if !b.Incremental {
		if err := Clean(b.config.PublicDir); err != nil {
			return result, err
		}
	}

	if b.config.StaticDir != "" {
		copied, err := CopyStatic(b.config.StaticDir, b.config.PublicDir)
		if err != nil {
			return result, err
		}
		b.log.StaticCopied(copied, b.config.StaticDir, b.config.PublicDir)
	}

	tmpl, err := os.ReadFile(b.config.Template)
	if err != nil {
		return result, fmt.Errorf("failed to read template: %w", err)
	}

	sources, err := ScanDirectory(b.config.ContentDir, ".md", b.config.ExcludePatterns)
	if err != nil {
		return result, fmt.Errorf("failed to scan content directory: %w", err)
	}

	result.Removed = b.prune(sources)

	events := b.run(ctx, sources, string(tmpl))
	for _, ev := range events {
		switch {
		case ev.Err != nil:
			result.Errors = append(result.Errors, &PageError{Source: ev.Source, Err: ev.Err})
		case ev.Skipped:
			result.Skipped = append(result.Skipped, ev.Source)
		default:
			result.Generated = append(result.Generated, ev.Source)
		}
	}
	sort.Strings(result.Generated)
	sort.Strings(result.Skipped)

	b.log.BuildCompleted(len(result.Generated), len(result.Skipped), len(result.Errors),
		time.Since(result.StartTime))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if b.FailFast && len(result.Errors) > 0 {
		return result, result.Errors[0]
	}
	return result, nil
}

// run generates pages on a pool of workers. Documents are independent, so
// the only shared state is the manifest and the event list.
func (b *Builder) run(ctx context.Context, sources []string, tmpl string) []PageEvent {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := b.config.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var (
		mu     sync.Mutex
		events []PageEvent
		wg     sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				ev := b.generate(src, tmpl)
				if ev.Err != nil && b.FailFast {
					cancel()
				}
				if b.OnPage != nil {
					b.OnPage(ev)
				}
				mu.Lock()
				events = append(events, ev)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, src := range sources {
		select {
		case jobs <- src:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return events
}

// generate renders a single source document
func (b *Builder) generate(src, tmpl string) PageEvent {
	ev := PageEvent{Source: src}

	dst, err := OutputPath(b.config.ContentDir, b.config.PublicDir, src)
	if err != nil {
		ev.Err = err
		return ev
	}
	ev.Output = dst

	if b.Incremental {
		changed, err := b.manifest.HasChanged(src)
		if err == nil && !changed && fileExists(dst) {
			ev.Skipped = true
			ev.Reason = "unchanged"
			b.log.PageSkipped(src, ev.Reason)
			return ev
		}
	}

	source, err := os.ReadFile(src)
	if err != nil {
		ev.Err = fmt.Errorf("failed to read source: %w", err)
		b.log.PageError(src, ev.Err)
		return ev
	}

	matter, _, err := frontmatter.Split(string(source))
	if err != nil {
		ev.Err = err
		b.log.PageError(src, err)
		return ev
	}

	// Drafts are skipped before rendering
	if matter.Draft {
		ev.Skipped = true
		ev.Reason = "draft"
		b.manifest.Remove(src)
		if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.log.PageError(src, err)
		}
		b.log.PageSkipped(src, ev.Reason)
		return ev
	}

	if matter.Template != "" {
		// Per-page templates resolve next to the default one
		override := filepath.Join(filepath.Dir(b.config.Template), matter.Template)
		_, err = GeneratePage(src, override, dst, b.config.BasePath)
	} else {
		var page *Page
		page, err = RenderPage(string(source), tmpl, b.config.BasePath)
		if err == nil {
			err = writePage(dst, page.HTML)
		}
	}
	if err != nil {
		ev.Err = err
		b.log.PageError(src, err)
		return ev
	}

	if err := b.manifest.Update(src, dst); err != nil {
		b.log.ManifestError("update", err)
	}

	b.log.PageGenerated(src, dst)
	return ev
}

// prune forgets pages whose source no longer exists and removes their output
func (b *Builder) prune(sources []string) []string {
	current := make(map[string]bool, len(sources))
	for _, src := range sources {
		current[src] = true
	}

	var removed []string
	for _, src := range b.manifest.Sources() {
		if current[src] {
			continue
		}
		if output, ok := b.manifest.Output(src); ok {
			if err := os.Remove(output); err != nil && !errors.Is(err, os.ErrNotExist) {
				b.log.PageError(src, err)
			}
		}
		b.manifest.Remove(src)
		removed = append(removed, src)
	}
	return removed
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// String returns a human-readable summary of the build result
func (r *BuildResult) String() string {
	duration := r.EndTime.Sub(r.StartTime)
	return fmt.Sprintf(
		"Build complete: %d pages generated, %d skipped, %d errors (took %v)",
		len(r.Generated),
		len(r.Skipped),
		len(r.Errors),
		duration,
	)
}
