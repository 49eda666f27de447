package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gerunddev/mdsite/internal/frontmatter"
	"github.com/gerunddev/mdsite/internal/markdown"
)

// Template placeholders
const (
	TitlePlaceholder   = "{{ Title }}"
	ContentPlaceholder = "{{ Content }}"
)

// Page is a rendered document ready to be written
type Page struct {
	Title  string
	Matter frontmatter.Matter
	HTML   string
}

// RenderPage converts one markdown document into a full HTML page using tmpl.
// The title comes from the front matter, or else from the first "# " line.
// Root-relative href and src attributes are rewritten to live under basePath.
func RenderPage(source, tmpl, basePath string) (*Page, error) {
	matter, body, err := frontmatter.Split(source)
	if err != nil {
		return nil, err
	}

	content, err := markdown.ToHTML(body)
	if err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	title := matter.Title
	if title == "" {
		title, err = markdown.ExtractTitle(body)
		if err != nil {
			return nil, err
		}
	}

	html := strings.ReplaceAll(tmpl, TitlePlaceholder, title)
	html = strings.ReplaceAll(html, ContentPlaceholder, content)
	html = rewriteBasePath(html, basePath)

	return &Page{
		Title:  title,
		Matter: matter,
		HTML:   html,
	}, nil
}

// rewriteBasePath points root-relative links and sources at basePath
func rewriteBasePath(html, basePath string) string {
	if basePath == "" || basePath == "/" {
		return html
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	html = strings.ReplaceAll(html, `href="/`, `href="`+basePath)
	html = strings.ReplaceAll(html, `src="/`, `src="`+basePath)
	return html
}

// GeneratePage reads the document at src, renders it with the template at
// tmplPath and writes the page to dst, creating parent directories. The
// builder uses it for pages that name their own template.
func GeneratePage(src, tmplPath, dst, basePath string) (*Page, error) {
	source, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	tmpl, err := os.ReadFile(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	page, err := RenderPage(string(source), string(tmpl), basePath)
	if err != nil {
		return nil, err
	}

	if err := writePage(dst, page.HTML); err != nil {
		return nil, err
	}

	return page, nil
}

func writePage(dst, html string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dst, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}

// OutputPath maps a source document under contentDir to its page under
// publicDir, mirroring the relative directory structure
func OutputPath(contentDir, publicDir, src string) (string, error) {
	rel, err := filepath.Rel(contentDir, src)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s relative to %s: %w", src, contentDir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside of %s", src, contentDir)
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	return filepath.Join(publicDir, rel), nil
}

// PageError reports a failure to generate one page
type PageError struct {
	Source string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
