package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/markdown"
	"github.com/gerunddev/mdsite/internal/state"
)

const testTemplate = `<html><head><title>{{ Title }}</title></head><body>{{ Content }}</body></html>`

type testSite struct {
	root     string
	cfg      *config.Config
	manifest *state.Manifest
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	root := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.ContentDir = filepath.Join(root, "content")
	cfg.StaticDir = filepath.Join(root, "static")
	cfg.PublicDir = filepath.Join(root, "public")
	cfg.Template = filepath.Join(root, "template.html")
	cfg.Workers = 2

	for _, dir := range []string{cfg.ContentDir, cfg.StaticDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}
	writeFile(t, cfg.Template, testTemplate)

	return &testSite{root: root, cfg: cfg, manifest: state.NewManifest()}
}

func (s *testSite) builder() *Builder {
	return NewBuilder(s.cfg, s.manifest)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func parsePage(t *testing.T, path string) *html.Node {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open page: %v", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		t.Fatalf("Failed to parse page: %v", err)
	}
	return doc
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestRenderPage(t *testing.T) {
	page, err := RenderPage("# Hello\n\nSome **bold** text", testTemplate, "/")
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}

	if page.Title != "Hello" {
		t.Errorf("Title = %q, want Hello", page.Title)
	}
	expected := `<html><head><title>Hello</title></head><body><div><h1>Hello</h1><p>Some <b>bold</b> text</p></div></body></html>`
	if diff := cmp.Diff(expected, page.HTML); diff != "" {
		t.Errorf("RenderPage() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPageFrontMatterTitle(t *testing.T) {
	source := "---\ntitle: From Matter\n---\n# Heading\n\nbody"
	page, err := RenderPage(source, "{{ Title }}", "/")
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if page.HTML != "From Matter" {
		t.Errorf("HTML = %q, want From Matter", page.HTML)
	}
}

func TestRenderPageErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target error
	}{
		{name: "no title", source: "just a paragraph", target: markdown.ErrNoTitle},
		{name: "unterminated bold", source: "# T\n\nsome **bold", target: nil},
		{name: "bad front matter", source: "---\ntitle: [unclosed\n---\n# T", target: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderPage(tt.source, testTemplate, "/")
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestRewriteBasePath(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		basePath string
		expected string
	}{
		{
			name:     "root base path",
			html:     `<a href="/about">x</a>`,
			basePath: "/",
			expected: `<a href="/about">x</a>`,
		},
		{
			name:     "empty base path",
			html:     `<a href="/about">x</a>`,
			basePath: "",
			expected: `<a href="/about">x</a>`,
		},
		{
			name:     "href and src",
			html:     `<a href="/about">x</a><img src="/logo.png" alt="l" />`,
			basePath: "/blog/",
			expected: `<a href="/blog/about">x</a><img src="/blog/logo.png" alt="l" />`,
		},
		{
			name:     "base path without trailing slash",
			html:     `<link href="/index.css">`,
			basePath: "/docs",
			expected: `<link href="/docs/index.css">`,
		},
		{
			name:     "absolute urls untouched",
			html:     `<a href="https://example.com/x">x</a>`,
			basePath: "/blog/",
			expected: `<a href="https://example.com/x">x</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rewriteBasePath(tt.html, tt.basePath)
			if got != tt.expected {
				t.Errorf("rewriteBasePath() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
		wantErr  bool
	}{
		{name: "top level", src: "content/index.md", expected: filepath.Join("public", "index.html")},
		{name: "nested", src: "content/blog/post.md", expected: filepath.Join("public", "blog", "post.html")},
		{name: "outside content", src: "other/post.md", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputPath("content", "public", tt.src)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("OutputPath failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("OutputPath() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGeneratePage(t *testing.T) {
	s := newTestSite(t)
	src := filepath.Join(s.cfg.ContentDir, "index.md")
	writeFile(t, src, "# Tolkien Fan Club\n\n![JRR Tolkien sitting](/images/tolkien.png)\n\nRead [more](/about)")
	dst := filepath.Join(s.cfg.PublicDir, "index.html")

	page, err := GeneratePage(src, s.cfg.Template, dst, "/site/")
	if err != nil {
		t.Fatalf("GeneratePage failed: %v", err)
	}
	if page.Title != "Tolkien Fan Club" {
		t.Errorf("Title = %q", page.Title)
	}

	doc := parsePage(t, dst)

	title := cascadia.MustCompile("title").MatchFirst(doc)
	if title == nil || textOf(title) != "Tolkien Fan Club" {
		t.Errorf("Unexpected title node: %v", title)
	}

	img := cascadia.MustCompile("div > p > img").MatchFirst(doc)
	if img == nil {
		t.Fatal("Image not found")
	}
	if got := attr(img, "src"); got != "/site/images/tolkien.png" {
		t.Errorf("img src = %q", got)
	}
	if got := attr(img, "alt"); got != "JRR Tolkien sitting" {
		t.Errorf("img alt = %q", got)
	}

	link := cascadia.MustCompile("a").MatchFirst(doc)
	if link == nil || attr(link, "href") != "/site/about" {
		t.Errorf("Unexpected link node: %v", link)
	}
}

func TestGeneratePageMissingTemplate(t *testing.T) {
	s := newTestSite(t)
	src := filepath.Join(s.cfg.ContentDir, "index.md")
	writeFile(t, src, "# T")

	_, err := GeneratePage(src, filepath.Join(s.root, "missing.html"), filepath.Join(s.cfg.PublicDir, "index.html"), "/")
	if err == nil {
		t.Error("Expected error for missing template")
	}
}

func TestCopyStatic(t *testing.T) {
	s := newTestSite(t)
	writeFile(t, filepath.Join(s.cfg.StaticDir, "index.css"), "body {}")
	writeFile(t, filepath.Join(s.cfg.StaticDir, "images", "logo.png"), "png")

	copied, err := CopyStatic(s.cfg.StaticDir, s.cfg.PublicDir)
	if err != nil {
		t.Fatalf("CopyStatic failed: %v", err)
	}
	if copied != 2 {
		t.Errorf("copied = %d, want 2", copied)
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.PublicDir, "images", "logo.png"))
	if err != nil {
		t.Fatalf("Nested file not copied: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("Copied content = %q", data)
	}
}

func TestCopyStaticMissingSource(t *testing.T) {
	dir := t.TempDir()
	copied, err := CopyStatic(filepath.Join(dir, "missing"), filepath.Join(dir, "public"))
	if err != nil {
		t.Fatalf("CopyStatic should not fail on missing source: %v", err)
	}
	if copied != 0 {
		t.Errorf("copied = %d, want 0", copied)
	}
}

func TestClean(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	writeFile(t, filepath.Join(dir, "stale", "old.html"), "old")

	if err := Clean(dir); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Directory should exist after Clean: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Directory should be empty, has %d entries", len(entries))
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"index.md", "blog/post.md", "blog/draft.tmp.md", "notes.txt", "private/secret.md"} {
		writeFile(t, filepath.Join(dir, name), "# x")
	}

	files, err := ScanDirectory(dir, ".md", []string{"*.tmp.md", "private/*"})
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "blog", "post.md"),
		filepath.Join(dir, "index.md"),
	}
	if diff := cmp.Diff(expected, files); diff != "" {
		t.Errorf("ScanDirectory() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild(t *testing.T) {
	s := newTestSite(t)
	writeFile(t, filepath.Join(s.cfg.StaticDir, "index.css"), "body {}")
	writeFile(t, filepath.Join(s.cfg.ContentDir, "index.md"), "# Home\n\n- one\n- two")
	writeFile(t, filepath.Join(s.cfg.ContentDir, "blog", "post.md"), "# Post\n\n> quoted")
	writeFile(t, filepath.Join(s.cfg.PublicDir, "stale.html"), "stale")

	var mu sync.Mutex
	seen := 0
	b := s.builder()
	b.OnPage = func(PageEvent) {
		mu.Lock()
		seen++
		mu.Unlock()
	}

	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	expected := []string{
		filepath.Join(s.cfg.ContentDir, "blog", "post.md"),
		filepath.Join(s.cfg.ContentDir, "index.md"),
	}
	if diff := cmp.Diff(expected, result.Generated); diff != "" {
		t.Errorf("Generated mismatch (-want +got):\n%s", diff)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Unexpected errors: %v", result.Errors)
	}
	if result.BuildID == "" {
		t.Error("BuildID should be set")
	}
	if seen != 2 {
		t.Errorf("OnPage called %d times, want 2", seen)
	}

	if _, err := os.Stat(filepath.Join(s.cfg.PublicDir, "stale.html")); !os.IsNotExist(err) {
		t.Error("Full build should clean the public directory")
	}
	if _, err := os.Stat(filepath.Join(s.cfg.PublicDir, "index.css")); err != nil {
		t.Errorf("Static file not copied: %v", err)
	}

	doc := parsePage(t, filepath.Join(s.cfg.PublicDir, "blog", "post.html"))
	quote := cascadia.MustCompile("blockquote").MatchFirst(doc)
	if quote == nil || textOf(quote) != "quoted" {
		t.Errorf("Unexpected blockquote: %v", quote)
	}

	doc = parsePage(t, filepath.Join(s.cfg.PublicDir, "index.html"))
	items := cascadia.MustCompile("ul > li").MatchAll(doc)
	if len(items) != 1 {
		t.Errorf("Expected list items to collapse into one li, got %d", len(items))
	}

	if len(s.manifest.Sources()) != 2 {
		t.Errorf("Manifest should track 2 pages, has %v", s.manifest.Sources())
	}
}

func TestBuildPageErrors(t *testing.T) {
	s := newTestSite(t)
	writeFile(t, filepath.Join(s.cfg.ContentDir, "good.md"), "# Good")
	writeFile(t, filepath.Join(s.cfg.ContentDir, "untitled.md"), "no heading here")

	result, err := s.builder().Build(context.Background())
	if err != nil {
		t.Fatalf("Build should not fail without FailFast: %v", err)
	}
	if len(result.Generated) != 1 {
		t.Errorf("Generated = %v, want one page", result.Generated)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want one error", result.Errors)
	}

	var pageErr *PageError
	if !errors.As(result.Errors[0], &pageErr) {
		t.Fatalf("Expected PageError, got %T", result.Errors[0])
	}
	if filepath.Base(pageErr.Source) != "untitled.md" {
		t.Errorf("PageError.Source = %q", pageErr.Source)
	}
	if !errors.Is(result.Errors[0], markdown.ErrNoTitle) {
		t.Errorf("Expected ErrNoTitle, got %v", result.Errors[0])
	}
}

func TestBuildFailFast(t *testing.T) {
	s := newTestSite(t)
	s.cfg.Workers = 1
	writeFile(t, filepath.Join(s.cfg.ContentDir, "broken.md"), "# T\n\nunclosed `code")

	b := s.builder()
	b.FailFast = true
	if _, err := b.Build(context.Background()); err == nil {
		t.Error("Expected FailFast build to return the page error")
	}
}

func TestBuildMissingTemplate(t *testing.T) {
	s := newTestSite(t)
	s.cfg.Template = filepath.Join(s.root, "missing.html")

	if _, err := s.builder().Build(context.Background()); err == nil {
		t.Error("Expected error for missing template")
	}
}

func TestBuildDraftsAndTemplateOverride(t *testing.T) {
	s := newTestSite(t)
	writeFile(t, filepath.Join(s.root, "bare.html"), "<main>{{ Content }}</main>")
	writeFile(t, filepath.Join(s.cfg.ContentDir, "draft.md"), "---\ndraft: true\n---\n# Draft")
	writeFile(t, filepath.Join(s.cfg.ContentDir, "bare.md"), "---\ntemplate: bare.html\n---\n# Bare")
	// Unfinished draft: no title and an unbalanced "_"
	writeFile(t, filepath.Join(s.cfg.ContentDir, "wip.md"), "---\ndraft: true\n---\nnotes about my_var")

	b := s.builder()
	b.FailFast = true
	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Drafts should not produce errors: %v", result.Errors)
	}
	expected := []string{
		filepath.Join(s.cfg.ContentDir, "draft.md"),
		filepath.Join(s.cfg.ContentDir, "wip.md"),
	}
	if diff := cmp.Diff(expected, result.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
	for _, name := range []string{"draft.html", "wip.html"} {
		if _, err := os.Stat(filepath.Join(s.cfg.PublicDir, name)); !os.IsNotExist(err) {
			t.Errorf("Draft page %s should not be written", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.PublicDir, "bare.html"))
	if err != nil {
		t.Fatalf("Failed to read page: %v", err)
	}
	if string(data) != "<main><div><h1>Bare</h1></div></main>" {
		t.Errorf("Override template not applied: %q", data)
	}
}

func TestBuildDraftRemovesOldOutput(t *testing.T) {
	s := newTestSite(t)
	src := filepath.Join(s.cfg.ContentDir, "post.md")
	writeFile(t, src, "# Post")

	b := s.builder()
	b.Incremental = true
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("First build failed: %v", err)
	}

	writeFile(t, src, "---\ndraft: true\n---\n# Post, rewritten with a stray _")
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(src, later, later); err != nil {
		t.Fatalf("Failed to set file times: %v", err)
	}

	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Second build failed: %v", err)
	}
	if diff := cmp.Diff([]string{src}, result.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(s.cfg.PublicDir, "post.html")); !os.IsNotExist(err) {
		t.Error("Output of a page turned draft should be removed")
	}
	if _, ok := s.manifest.Output(src); ok {
		t.Error("Draft should be dropped from the manifest")
	}
}

func TestBuildIncremental(t *testing.T) {
	s := newTestSite(t)
	index := filepath.Join(s.cfg.ContentDir, "index.md")
	about := filepath.Join(s.cfg.ContentDir, "about.md")
	writeFile(t, index, "# Home")
	writeFile(t, about, "# About")

	base := time.Now().Add(-time.Hour)
	for _, path := range []string{index, about} {
		if err := os.Chtimes(path, base, base); err != nil {
			t.Fatalf("Failed to set file times: %v", err)
		}
	}

	if _, err := s.builder().Build(context.Background()); err != nil {
		t.Fatalf("First build failed: %v", err)
	}

	writeFile(t, about, "# About us")
	edited := base.Add(time.Minute)
	if err := os.Chtimes(about, edited, edited); err != nil {
		t.Fatalf("Failed to set file times: %v", err)
	}

	b := s.builder()
	b.Incremental = true
	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Incremental build failed: %v", err)
	}

	if diff := cmp.Diff([]string{about}, result.Generated); diff != "" {
		t.Errorf("Generated mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{index}, result.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}

	// Deleted sources lose their page
	if err := os.Remove(index); err != nil {
		t.Fatalf("Failed to remove source: %v", err)
	}
	result, err = b.Build(context.Background())
	if err != nil {
		t.Fatalf("Incremental build failed: %v", err)
	}
	if diff := cmp.Diff([]string{index}, result.Removed); diff != "" {
		t.Errorf("Removed mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(s.cfg.PublicDir, "index.html")); !os.IsNotExist(err) {
		t.Error("Page for deleted source should be removed")
	}
}

func TestBuildCancelled(t *testing.T) {
	s := newTestSite(t)
	writeFile(t, filepath.Join(s.cfg.ContentDir, "index.md"), "# Home")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.builder().Build(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBuildResultString(t *testing.T) {
	start := time.Now()
	r := &BuildResult{
		Generated: []string{"a.md", "b.md"},
		Skipped:   []string{"c.md"},
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
	}

	expected := "Build complete: 2 pages generated, 1 skipped, 0 errors (took 2s)"
	if got := r.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}
}
