package api

import "github.com/starford/laguz/internal/gateway"

// OpRequest is the request body shared by all storage operation routes.
// Path is used by single-path operations; Source/Target by copy and
// rename; Content by write. Config is the per-call backend
// configuration document.
type OpRequest struct {
	Service string         `json:"service"`
	Path    string         `json:"path,omitempty"`
	Source  string         `json:"source,omitempty"`
	Target  string         `json:"target,omitempty"`
	Content string         `json:"content,omitempty"`
	Config  map[string]any `json:"config"`
}

// ContentResponse wraps the text content returned by read.
type ContentResponse struct {
	Content string `json:"content"`
}

// OKResponse wraps the boolean outcome of write-like operations.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ExistsResponse wraps the outcome of exists.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ListResponse wraps a directory listing.
type ListResponse struct {
	Entries []gateway.Entry `json:"entries"`
	Total   int             `json:"total"`
}
