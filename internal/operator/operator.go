// Package operator defines the storage operator abstraction: the fixed
// operation set every backend kind implements, the metadata it returns,
// and the translation of per-call configuration documents into typed,
// validated backend configurations.
package operator

import (
	"context"
	"time"
)

// Scheme identifies a storage backend kind.
type Scheme string

// Supported backend kinds.
const (
	SchemeFS     Scheme = "fs"
	SchemeMemory Scheme = "memory"
	SchemeS3     Scheme = "s3"
	SchemeSQLite Scheme = "sqlite"
)

// ParseScheme resolves a service identifier string to a Scheme.
// Long-form aliases are accepted for caller convenience.
func ParseScheme(service string) (Scheme, error) {
	switch service {
	case "fs", "filesystem":
		return SchemeFS, nil
	case "memory", "in-memory":
		return SchemeMemory, nil
	case "s3", "object-storage":
		return SchemeS3, nil
	case "sqlite":
		return SchemeSQLite, nil
	default:
		return "", wrapScheme(service)
	}
}

// Metadata describes a stored entry. ModTime is the zero value when the
// backend does not track modification times.
type Metadata struct {
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// Entry is one item in a directory listing.
type Entry struct {
	Name string
	Path string
	Meta Metadata
}

// Capability reports which operations a backend supports.
type Capability struct {
	Read      bool
	Write     bool
	List      bool
	Stat      bool
	Delete    bool
	Copy      bool
	Rename    bool
	CreateDir bool
}

// Operator is a handle bound to one backend kind and one validated
// configuration. Every instance is constructed for a single call, used
// for a single operation, and closed when that call returns; instances
// are never shared between calls.
//
// Operations that a backend does not support return ErrUnsupported.
type Operator interface {
	// Read returns the full content stored at path.
	Read(ctx context.Context, path string) ([]byte, error)
	// Write stores content at path, replacing any existing entry.
	Write(ctx context.Context, path string, content []byte) error
	// Stat returns metadata for the entry at path.
	Stat(ctx context.Context, path string) (Metadata, error)
	// Delete removes the entry at path. Deleting a missing entry is not
	// an error.
	Delete(ctx context.Context, path string) error
	// List returns the immediate children of the directory at path.
	List(ctx context.Context, path string) ([]Entry, error)
	// CreateDir creates the directory at path, including missing parents.
	CreateDir(ctx context.Context, path string) error
	// Copy duplicates the entry at source to target.
	Copy(ctx context.Context, source, target string) error
	// Rename moves the entry at source to target.
	Rename(ctx context.Context, source, target string) error
	// Capability reports the operations this backend supports.
	Capability() Capability
	// Close releases any resources held by the operator.
	Close() error
}
