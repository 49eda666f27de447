package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PageState represents the state of a single source document at its last build
type PageState struct {
	MTime  int64  `json:"mtime"`
	Hash   string `json:"hash"`
	Output string `json:"output"`
}

// Manifest records what the last build generated, so unchanged pages can be skipped.
// It is safe for concurrent use by the build workers.
type Manifest struct {
	mu sync.Mutex

	BuildID   string                `json:"build_id"`
	LastBuild time.Time             `json:"last_build"`
	Pages     map[string]*PageState `json:"pages"` // source path -> state
}

// NewManifest creates a new empty manifest
func NewManifest() *Manifest {
	return &Manifest{
		Pages: make(map[string]*PageState),
	}
}

// Load reads a manifest from path
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(), nil
		}
		return nil, err
	}

	manifest := NewManifest()
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if manifest.Pages == nil {
		manifest.Pages = make(map[string]*PageState)
	}

	return manifest, nil
}

// Save writes the manifest to path
func (m *Manifest) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// StartBuild assigns a fresh build ID and returns it
func (m *Manifest) StartBuild() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BuildID = uuid.New().String()
	m.LastBuild = time.Now()
	return m.BuildID
}

// ComputeHash computes SHA256 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// HasChanged checks if a source document has changed since it was last built
// Uses hybrid mtime + hash approach
func (m *Manifest) HasChanged(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	mtime := info.ModTime().Unix()

	m.mu.Lock()
	page, exists := m.Pages[path]
	m.mu.Unlock()

	if !exists {
		// New page
		return true, nil
	}

	// Fast path: check mtime first
	if mtime == page.MTime {
		return false, nil
	}

	// mtime changed, compute hash to check for actual content changes
	hash, err := ComputeHash(path)
	if err != nil {
		return false, err
	}

	return hash != page.Hash, nil
}

// Update records the current state of a source document and its output path
func (m *Manifest) Update(path, output string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hash, err := ComputeHash(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Pages[path] = &PageState{
		MTime:  info.ModTime().Unix(),
		Hash:   hash,
		Output: output,
	}

	return nil
}

// Remove forgets a source document
func (m *Manifest) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Pages, path)
}

// Output returns the output path recorded for a source document
func (m *Manifest) Output(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, ok := m.Pages[path]
	if !ok {
		return "", false
	}
	return page.Output, true
}

// Sources returns the tracked source paths in sorted order
func (m *Manifest) Sources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := make([]string, 0, len(m.Pages))
	for path := range m.Pages {
		sources = append(sources, path)
	}
	sort.Strings(sources)
	return sources
}

// GetMTime returns the recorded modification time for a source document
func (m *Manifest) GetMTime(path string) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if page, exists := m.Pages[path]; exists && page.MTime != 0 {
		return time.Unix(page.MTime, 0)
	}
	return time.Time{}
}
