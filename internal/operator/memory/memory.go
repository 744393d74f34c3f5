// Package memory implements the storage operator backed by an in-process
// store. Stores are named: every call whose configuration carries the
// same name addresses the same store, so content written by one call is
// visible to later calls within the process. Distinct names are fully
// isolated.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/starford/laguz/internal/operator"
)

// registry holds the named stores for the process. It is the only state
// shared between calls; individual operators are still per-call handles.
var (
	registryMu sync.Mutex
	registry   = make(map[string]*store)
)

type object struct {
	data    []byte
	modTime time.Time
	isDir   bool
}

type store struct {
	mu      sync.RWMutex
	objects map[string]object
}

// Memory implements operator.Operator over a named in-process store.
type Memory struct {
	store *store
}

// New returns an operator bound to the store named in cfg, creating the
// store on first use.
func New(cfg *operator.MemoryConfig) *Memory {
	registryMu.Lock()
	defer registryMu.Unlock()
	s, ok := registry[cfg.Name]
	if !ok {
		s = &store{objects: make(map[string]object)}
		registry[cfg.Name] = s
	}
	return &Memory{store: s}
}

// normalize strips leading slashes so "a/b" and "/a/b" address the same
// object.
func normalize(path string) string {
	return strings.TrimPrefix(path, "/")
}

// Read returns a copy of the content stored at path.
func (m *Memory) Read(_ context.Context, path string) ([]byte, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	obj, ok := m.store.objects[normalize(path)]
	if !ok || obj.isDir {
		return nil, fmt.Errorf("memory: read %s: %w", path, operator.ErrNotFound)
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

// Write stores a copy of content at path.
func (m *Memory) Write(_ context.Context, path string, content []byte) error {
	data := make([]byte, len(content))
	copy(data, content)

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.objects[normalize(path)] = object{data: data, modTime: time.Now()}
	return nil
}

// Stat returns metadata for the object at path. A path that only exists
// as the parent of deeper keys stats as a directory, matching how List
// surfaces it.
func (m *Memory) Stat(_ context.Context, path string) (operator.Metadata, error) {
	key := normalize(path)

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	obj, ok := m.store.objects[key]
	if ok {
		return operator.Metadata{
			Size:    int64(len(obj.data)),
			IsDir:   obj.isDir,
			ModTime: obj.modTime,
		}, nil
	}
	if key != "" {
		prefix := key + "/"
		for k := range m.store.objects {
			if strings.HasPrefix(k, prefix) {
				return operator.Metadata{IsDir: true}, nil
			}
		}
	}
	return operator.Metadata{}, fmt.Errorf("memory: stat %s: %w", path, operator.ErrNotFound)
}

// Delete removes the object at path. A missing object is not an error.
func (m *Memory) Delete(_ context.Context, path string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	delete(m.store.objects, normalize(path))
	return nil
}

// List returns the immediate children of the directory at path.
func (m *Memory) List(_ context.Context, path string) ([]operator.Entry, error) {
	prefix := normalize(path)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	// Collect direct children; anything nested deeper surfaces as a
	// synthetic directory entry.
	seen := make(map[string]operator.Entry)
	for key, obj := range m.store.objects {
		if !strings.HasPrefix(key, prefix) || key == prefix {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			name := rest[:i]
			if _, ok := seen[name]; !ok {
				seen[name] = operator.Entry{
					Name: name,
					Path: prefix + name,
					Meta: operator.Metadata{IsDir: true},
				}
			}
			continue
		}
		seen[rest] = operator.Entry{
			Name: rest,
			Path: key,
			Meta: operator.Metadata{
				Size:    int64(len(obj.data)),
				IsDir:   obj.isDir,
				ModTime: obj.modTime,
			},
		}
	}

	entries := make([]operator.Entry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// CreateDir records a directory marker at path. Creating an existing
// directory succeeds.
func (m *Memory) CreateDir(_ context.Context, path string) error {
	key := normalize(path)
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if obj, ok := m.store.objects[key]; ok && !obj.isDir {
		return fmt.Errorf("memory: create dir %s: %w", path, operator.ErrAlreadyExists)
	}
	m.store.objects[key] = object{isDir: true, modTime: time.Now()}
	return nil
}

// Copy duplicates the object at source to target.
func (m *Memory) Copy(_ context.Context, source, target string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	obj, ok := m.store.objects[normalize(source)]
	if !ok || obj.isDir {
		return fmt.Errorf("memory: copy %s: %w", source, operator.ErrNotFound)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	m.store.objects[normalize(target)] = object{data: data, modTime: time.Now()}
	return nil
}

// Rename moves the object at source to target.
func (m *Memory) Rename(_ context.Context, source, target string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	src := normalize(source)
	obj, ok := m.store.objects[src]
	if !ok || obj.isDir {
		return fmt.Errorf("memory: rename %s: %w", source, operator.ErrNotFound)
	}
	delete(m.store.objects, src)
	obj.modTime = time.Now()
	m.store.objects[normalize(target)] = obj
	return nil
}

// Capability reports full support.
func (m *Memory) Capability() operator.Capability {
	return operator.Capability{
		Read: true, Write: true, List: true, Stat: true,
		Delete: true, Copy: true, Rename: true, CreateDir: true,
	}
}

// Close is a no-op; the named store outlives the operator.
func (m *Memory) Close() error { return nil }
