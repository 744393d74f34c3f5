// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the storage gateway operations as tools over stdio
// transport. Tool failures are returned as MCP error results; a fault
// inside a storage operation never crashes the host process.
package mcpserver

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/laguz/internal/gateway"
)

// Server wraps the MCP server with the storage tools.
type Server struct {
	mcp *server.MCPServer
	gw  *gateway.Gateway
}

// New creates an MCP server with all storage tools registered.
func New(gw *gateway.Gateway) *Server {
	s := &Server{gw: gw}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	configOpt := func(t string) []mcp.ToolOption {
		return []mcp.ToolOption{
			mcp.WithDescription(t),
			mcp.WithString("service", mcp.Required(),
				mcp.Description("Backend kind: fs, memory, s3, or sqlite")),
			mcp.WithObject("config",
				mcp.Description("Backend configuration document, e.g. {\"root\": \"/data\"} for fs")),
		}
	}
	withPath := func(t string) []mcp.ToolOption {
		return append(configOpt(t),
			mcp.WithString("path", mcp.Required(), mcp.Description("Entry path within the backend")))
	}
	withPair := func(t string) []mcp.ToolOption {
		return append(configOpt(t),
			mcp.WithString("source", mcp.Required(), mcp.Description("Source path")),
			mcp.WithString("target", mcp.Required(), mcp.Description("Target path")))
	}

	s.mcp.AddTool(mcp.NewTool("storage_read",
		withPath("Read the content at a path as UTF-8 text.")...), s.read)

	s.mcp.AddTool(mcp.NewTool("storage_write",
		append(withPath("Write UTF-8 text content to a path, replacing any existing entry."),
			mcp.WithString("content", mcp.Required(), mcp.Description("Text content to store")))...), s.write)

	s.mcp.AddTool(mcp.NewTool("storage_exists",
		withPath("Check whether an entry exists at a path.")...), s.exists)

	s.mcp.AddTool(mcp.NewTool("storage_delete",
		withPath("Delete the entry at a path. Deleting a missing entry succeeds.")...), s.delete)

	s.mcp.AddTool(mcp.NewTool("storage_stat",
		withPath("Get metadata (content_length, is_file, is_dir, last_modified) for a path.")...), s.stat)

	s.mcp.AddTool(mcp.NewTool("storage_list",
		append(configOpt("List the entries under a directory path."),
			mcp.WithString("path", mcp.Description("Directory path (empty for the root)")))...), s.list)

	s.mcp.AddTool(mcp.NewTool("storage_create_dir",
		withPath("Create a directory at a path, including missing parents.")...), s.createDir)

	s.mcp.AddTool(mcp.NewTool("storage_copy",
		withPair("Copy an entry from source to target.")...), s.copy)

	s.mcp.AddTool(mcp.NewTool("storage_rename",
		withPair("Rename (move) an entry from source to target.")...), s.rename)

	s.mcp.AddTool(mcp.NewTool("storage_capability",
		configOpt("Report which operations the backend supports.")...), s.capability)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// configDoc extracts the optional config object argument.
func configDoc(req mcp.CallToolRequest) map[string]any {
	args := req.GetArguments()
	if doc, ok := args["config"].(map[string]any); ok {
		return doc
	}
	return map[string]any{}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) read(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.gw.Read(ctx, service, path, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) write(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.gw.Write(ctx, service, path, content, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(ok)), nil
}

func (s *Server) exists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	exists, err := s.gw.Exists(ctx, service, path, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(exists)), nil
}

func (s *Server) delete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.gw.Delete(ctx, service, path, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(ok)), nil
}

func (s *Server) stat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.gw.Stat(ctx, service, path, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) list(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := req.GetString("path", "")
	entries, err := s.gw.List(ctx, service, path, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if entries == nil {
		entries = []gateway.Entry{}
	}
	return jsonResult(entries), nil
}

func (s *Server) createDir(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.gw.CreateDir(ctx, service, path, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(ok)), nil
}

func (s *Server) copy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.gw.Copy(ctx, service, source, target, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(ok)), nil
}

func (s *Server) rename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.gw.Rename(ctx, service, source, target, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(ok)), nil
}

func (s *Server) capability(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	caps, err := s.gw.Capability(ctx, service, configDoc(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(caps), nil
}
