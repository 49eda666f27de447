package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/diff"
	"github.com/gerunddev/mdsite/internal/frontmatter"
	"github.com/gerunddev/mdsite/internal/markdown"
	"github.com/gerunddev/mdsite/internal/styles"
)

// renderFragment converts the document at path to its HTML fragment,
// without applying a template
func renderFragment(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	_, body, err := frontmatter.Split(string(source))
	if err != nil {
		return "", err
	}

	html, err := markdown.ToHTML(body)
	if err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", path, err)
	}
	return html, nil
}

// Preview renders a markdown document in the terminal with glamour
func Preview(args []string) {
	errorStyle := styles.ErrorStyle

	path, ok := positional(args)
	if !ok {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Usage: mdsite preview <page.md>"))
		os.Exit(1)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Failed to read file: "+err.Error()))
		os.Exit(1)
	}

	matter, body, err := frontmatter.Split(string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}

	// Refuse documents the site build would reject
	if _, err := markdown.ToHTML(body); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}

	if matter.Draft {
		fmt.Println(styles.WarningStyle.Render("○ Draft: this page is skipped by build"))
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(body)
		return
	}

	rendered, err := renderer.Render(body)
	if err != nil {
		fmt.Print(body)
		return
	}
	fmt.Print(rendered)
}

// Diff shows how rebuilding a page would change its generated HTML
func Diff(args []string) {
	errorStyle := styles.ErrorStyle

	path, ok := positional(args)
	if !ok {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Usage: mdsite diff <page.md>"))
		os.Exit(1)
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Error loading config: "+err.Error()))
		os.Exit(1)
	}

	src, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}
	if contentDir, err := filepath.Abs(cfg.ContentDir); err == nil {
		cfg.ContentDir = contentDir
	}

	format := diff.FormatRendered
	if hasFlag(args, "--plain") || !isTerminal() {
		format = diff.FormatPlain
	}

	out, err := diff.Generate(cfg, src, format)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}
	if out == "" {
		fmt.Println(styles.SuccessStyle.Render("✓ Page is up to date"))
		return
	}
	fmt.Print(out)
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ Title }}</title>
    <link href="/index.css" rel="stylesheet">
</head>
<body>
    <article>
        {{ Content }}
    </article>
</body>
</html>
`

const defaultIndex = `# Welcome

This site was generated by **mdsite**.

- Write pages in the content directory
- Put images and stylesheets in the static directory
`

// scaffold creates the directories and starter files named by cfg that do
// not exist yet and returns the paths it created
func scaffold(cfg *config.Config) ([]string, error) {
	var created []string

	for _, dir := range []string{cfg.ContentDir, cfg.StaticDir} {
		if dir == "" || fileExists(dir) {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		created = append(created, dir)
	}

	files := []struct {
		path    string
		content string
	}{
		{cfg.Template, defaultTemplate},
		{filepath.Join(cfg.ContentDir, "index.md"), defaultIndex},
		{filepath.Join(cfg.StaticDir, "index.css"), "body { max-width: 40rem; margin: 0 auto; }\n"},
	}
	for _, f := range files {
		if fileExists(f.path) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", filepath.Dir(f.path), err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return created, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		created = append(created, f.path)
	}

	return created, nil
}

// Init writes the default configuration and a starter site
func Init(args []string) {
	successStyle := styles.SuccessStyle
	errorStyle := styles.ErrorStyle
	dimStyle := styles.DimStyle

	cfg := config.DefaultConfig()
	if err := applyFlags(cfg, args); err != nil {
		fmt.Println(errorStyle.Render("✗ " + err.Error()))
		os.Exit(1)
	}

	if fileExists(config.ConfigPath()) && !hasFlag(args, "--force") {
		fmt.Println(dimStyle.Render("Config already exists at " + config.ConfigPath() + " (use --force to overwrite)"))
	} else {
		if err := cfg.ExpandPaths(); err != nil {
			fmt.Println(errorStyle.Render("✗ " + err.Error()))
			os.Exit(1)
		}
		if err := cfg.Save(); err != nil {
			fmt.Println(errorStyle.Render("✗ Failed to save config: " + err.Error()))
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("✓ Wrote " + config.ConfigPath()))
	}

	created, err := scaffold(cfg)
	for _, path := range created {
		fmt.Println(successStyle.Render("✓ Created " + path))
	}
	if err != nil {
		fmt.Println(errorStyle.Render("✗ " + err.Error()))
		os.Exit(1)
	}
}
