package gateway

import (
	"time"

	"github.com/starford/laguz/internal/operator"
)

// Stat is the caller-facing metadata record. LastModified is RFC3339
// and omitted when the backend does not track modification times.
type Stat struct {
	ContentLength int64  `json:"content_length"`
	IsFile        bool   `json:"is_file"`
	IsDir         bool   `json:"is_dir"`
	LastModified  string `json:"last_modified,omitempty"`
}

// Entry is one caller-facing listing record.
type Entry struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	ContentLength int64  `json:"content_length"`
	IsFile        bool   `json:"is_file"`
	IsDir         bool   `json:"is_dir"`
	LastModified  string `json:"last_modified,omitempty"`
}

// Capability is the caller-facing capability record: one boolean per
// operation.
type Capability struct {
	Read      bool `json:"read"`
	Write     bool `json:"write"`
	List      bool `json:"list"`
	Stat      bool `json:"stat"`
	Delete    bool `json:"delete"`
	Copy      bool `json:"copy"`
	Rename    bool `json:"rename"`
	CreateDir bool `json:"create_dir"`
}

// Marshalling below is total: it never fails for outcomes produced by
// the backends in this repository.

func statFrom(md operator.Metadata) Stat {
	return Stat{
		ContentLength: md.Size,
		IsFile:        !md.IsDir,
		IsDir:         md.IsDir,
		LastModified:  rfc3339OrEmpty(md.ModTime),
	}
}

func entryFrom(e operator.Entry) Entry {
	return Entry{
		Name:          e.Name,
		Path:          e.Path,
		ContentLength: e.Meta.Size,
		IsFile:        !e.Meta.IsDir,
		IsDir:         e.Meta.IsDir,
		LastModified:  rfc3339OrEmpty(e.Meta.ModTime),
	}
}

func capabilityFrom(c operator.Capability) Capability {
	return Capability{
		Read:      c.Read,
		Write:     c.Write,
		List:      c.List,
		Stat:      c.Stat,
		Delete:    c.Delete,
		Copy:      c.Copy,
		Rename:    c.Rename,
		CreateDir: c.CreateDir,
	}
}

func rfc3339OrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
