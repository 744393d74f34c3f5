// Package fs implements the storage operator backed by the local
// filesystem, rooted at a configured directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/laguz/internal/operator"
)

// FS implements operator.Operator over a root directory.
type FS struct {
	root string // absolute path to the root directory
}

// New creates an FS operator rooted at cfg.Root. The directory must
// already exist.
func New(cfg *operator.FSConfig) (*FS, error) {
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("fs: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("fs: stat root: %w", mapErr(err))
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fs: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath resolves a relative path against the root and rejects any
// result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" || rel == "/" {
		return f.root, nil
	}
	cleaned := filepath.Clean(strings.TrimPrefix(rel, "/"))
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("fs: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("fs: path escapes root: %s", rel)
	}
	return abs, nil
}

// Read returns the content of the file at path.
func (f *FS) Read(_ context.Context, path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("fs: read %s: %w", path, mapErr(err))
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename. Parent
// directories are created as needed.
func (f *FS) Write(_ context.Context, path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fs: mkdir: %w", mapErr(err))
	}

	tmp, err := os.CreateTemp(dir, ".laguz-tmp-*")
	if err != nil {
		return fmt.Errorf("fs: create temp: %w", mapErr(err))
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("fs: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fs: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fs: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("fs: rename temp: %w", mapErr(err))
	}
	success = true
	return nil
}

// Stat returns metadata for the entry at path.
func (f *FS) Stat(_ context.Context, path string) (operator.Metadata, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return operator.Metadata{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return operator.Metadata{}, fmt.Errorf("fs: stat %s: %w", path, mapErr(err))
	}
	return metaFrom(info), nil
}

// Delete removes the file at path. A missing file is not an error.
func (f *FS) Delete(_ context.Context, path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("fs: delete %s: %w", path, mapErr(err))
	}
	return nil
}

// List returns the immediate children of the directory at path.
func (f *FS) List(_ context.Context, path string) ([]operator.Entry, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	dirents, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("fs: list %s: %w", path, mapErr(err))
	}
	entries := make([]operator.Entry, 0, len(dirents))
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("fs: list %s: %w", path, mapErr(err))
		}
		rel := d.Name()
		if p := strings.Trim(path, "/"); p != "" && p != "." {
			rel = p + "/" + d.Name()
		}
		entries = append(entries, operator.Entry{
			Name: d.Name(),
			Path: rel,
			Meta: metaFrom(info),
		})
	}
	return entries, nil
}

// CreateDir creates the directory at path, including missing parents.
// Creating an existing directory succeeds.
func (f *FS) CreateDir(_ context.Context, path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("fs: create dir %s: %w", path, mapErr(err))
	}
	return nil
}

// Copy duplicates the file at source to target, replacing target if it
// exists.
func (f *FS) Copy(ctx context.Context, source, target string) error {
	data, err := f.Read(ctx, source)
	if err != nil {
		return err
	}
	return f.Write(ctx, target, data)
}

// Rename moves the entry at source to target.
func (f *FS) Rename(_ context.Context, source, target string) error {
	absOld, err := f.safePath(source)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(target)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("fs: mkdir for rename: %w", mapErr(err))
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("fs: rename %s to %s: %w", source, target, mapErr(err))
	}
	return nil
}

// Capability reports full support: the filesystem backend implements
// every operation.
func (f *FS) Capability() operator.Capability {
	return operator.Capability{
		Read: true, Write: true, List: true, Stat: true,
		Delete: true, Copy: true, Rename: true, CreateDir: true,
	}
}

// Close is a no-op; FS holds no resources beyond the root path.
func (f *FS) Close() error { return nil }

func metaFrom(info fs.FileInfo) operator.Metadata {
	return operator.Metadata{
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
}

// mapErr classifies OS-level errors into the operator taxonomy.
func mapErr(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return operator.ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return operator.ErrPermission
	case errors.Is(err, fs.ErrExist):
		return operator.ErrAlreadyExists
	default:
		return err
	}
}
