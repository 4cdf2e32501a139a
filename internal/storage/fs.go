package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the output directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// CreateFS creates root (and parents) when missing, then opens it.
func CreateFS(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir root: %w", err)
	}
	return NewFS(root)
}

// Root returns the absolute output directory.
func (f *FS) Root() string { return f.root }

// artifactPath maps an artifact name to its location under the root. Names
// must be non-empty local paths; absolute paths and ".." escapes are refused.
func (f *FS) artifactPath(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("storage: path escapes output root: %q", name)
	}
	return filepath.Join(f.root, name), nil
}

// Read returns the raw bytes of an artifact.
func (f *FS) Read(name string) ([]byte, error) {
	p, err := f.artifactPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write replaces an artifact atomically. Readers see either the old file or
// the complete new one, never a partial write.
func (f *FS) Write(name string, content []byte) error {
	p, err := f.artifactPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	tmpName, err := writeTemp(filepath.Dir(p), content)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: replace %s: %w", name, err)
	}
	return nil
}

// writeTemp stores content in a synced, world-readable temp file in dir and
// returns its name. The file is removed on any failure.
func writeTemp(dir string, content []byte) (name string, err error) {
	tmp, err := os.CreateTemp(dir, ".boxgraph-tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return "", fmt.Errorf("storage: write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("storage: fsync: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return "", fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close temp: %w", err)
	}
	return tmp.Name(), nil
}
