package diff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/site"
)

// Format represents the output format for diffs
type Format int

const (
	// FormatRendered renders the diff through glamour for the terminal (default)
	FormatRendered Format = iota
	// FormatPlain returns the unified diff as is
	FormatPlain
)

// Unified returns a unified diff turning current into generated.
// Identical inputs produce an empty string.
func Unified(name, current, generated string) string {
	if current == generated {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(name), current, generated)
	return fmt.Sprint(gotextdiff.ToUnified(name+" (current)", name+" (generated)", current, edits))
}

// Generate renders the page for src with the configured template and diffs
// it against the page currently in the public directory. A page that was
// never generated is diffed against an empty file.
func Generate(cfg *config.Config, src string, format Format) (string, error) {
	source, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}

	tmpl, err := os.ReadFile(cfg.Template)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}

	page, err := site.RenderPage(string(source), string(tmpl), cfg.BasePath)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", src, err)
	}

	dst, err := site.OutputPath(cfg.ContentDir, cfg.PublicDir, src)
	if err != nil {
		return "", err
	}

	current, err := os.ReadFile(dst)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read current page: %w", err)
	}

	unified := Unified(filepath.Base(dst), string(current), page.HTML)
	if unified == "" || format == FormatPlain {
		return unified, nil
	}
	return Render(unified), nil
}

// Render wraps a unified diff in a diff code fence and renders it with
// glamour, falling back to the fenced text when rendering fails
func Render(unified string) string {
	fenced := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fenced
	}

	rendered, err := renderer.Render(fenced)
	if err != nil {
		return fenced
	}

	return rendered
}
