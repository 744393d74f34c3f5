package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/laguz/internal/bridge"
	"github.com/starford/laguz/internal/gateway"
	"github.com/starford/laguz/internal/operator"
)

// Handler holds API route handlers.
type Handler struct {
	gw *gateway.Gateway
}

// NewHandler creates a new Handler.
func NewHandler(gw *gateway.Gateway) *Handler {
	return &Handler{gw: gw}
}

// decodeOp reads and minimally validates the shared request body.
// needPath/needPair select which argument fields are mandatory.
func decodeOp(w http.ResponseWriter, r *http.Request, needPath, needPair bool) (*OpRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 32<<20)
	var req OpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid JSON body", Kind: operator.KindConfig})
		return nil, false
	}
	if req.Service == "" {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "service is required", Kind: operator.KindConfig})
		return nil, false
	}
	if needPath && req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "path is required", Kind: operator.KindConfig})
		return nil, false
	}
	if needPair && (req.Source == "" || req.Target == "") {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "source and target are required", Kind: operator.KindConfig})
		return nil, false
	}
	if req.Config == nil {
		req.Config = map[string]any{}
	}
	return &req, true
}

// writeErr maps a pipeline error to an HTTP status and error body.
func writeErr(w http.ResponseWriter, op string, err error) {
	kind := operator.Classify(err)
	status := http.StatusInternalServerError
	switch kind {
	case operator.KindNotFound:
		status = http.StatusNotFound
	case operator.KindPermission:
		status = http.StatusForbidden
	case operator.KindExists:
		status = http.StatusConflict
	case operator.KindUnsupported:
		status = http.StatusNotImplemented
	case operator.KindConnection:
		status = http.StatusBadGateway
	case operator.KindConfig:
		status = http.StatusBadRequest
	}
	if errors.Is(err, bridge.ErrInternal) {
		kind = "internal"
	}
	if status == http.StatusInternalServerError {
		slog.Error("storage operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
	}
	writeJSON(w, status, errResponse{Error: err.Error(), Kind: kind})
}

// Read handles POST /storage/read.
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, true, false)
	if !ok {
		return
	}
	content, err := h.gw.Read(r.Context(), req.Service, req.Path, req.Config)
	if err != nil {
		writeErr(w, "read", err)
		return
	}
	writeJSON(w, http.StatusOK, ContentResponse{Content: content})
}

// Write handles POST /storage/write.
func (h *Handler) Write(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, true, false)
	if !ok {
		return
	}
	okRes, err := h.gw.Write(r.Context(), req.Service, req.Path, req.Content, req.Config)
	if err != nil {
		writeErr(w, "write", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: okRes})
}

// Exists handles POST /storage/exists.
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, true, false)
	if !ok {
		return
	}
	exists, err := h.gw.Exists(r.Context(), req.Service, req.Path, req.Config)
	if err != nil {
		writeErr(w, "exists", err)
		return
	}
	writeJSON(w, http.StatusOK, ExistsResponse{Exists: exists})
}

// Delete handles POST /storage/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, true, false)
	if !ok {
		return
	}
	okRes, err := h.gw.Delete(r.Context(), req.Service, req.Path, req.Config)
	if err != nil {
		writeErr(w, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: okRes})
}

// Stat handles POST /storage/stat.
func (h *Handler) Stat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, true, false)
	if !ok {
		return
	}
	st, err := h.gw.Stat(r.Context(), req.Service, req.Path, req.Config)
	if err != nil {
		writeErr(w, "stat", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// List handles POST /storage/list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, false, false)
	if !ok {
		return
	}
	entries, err := h.gw.List(r.Context(), req.Service, req.Path, req.Config)
	if err != nil {
		writeErr(w, "list", err)
		return
	}
	if entries == nil {
		entries = []gateway.Entry{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Entries: entries, Total: len(entries)})
}

// CreateDir handles POST /storage/create_dir.
func (h *Handler) CreateDir(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, true, false)
	if !ok {
		return
	}
	okRes, err := h.gw.CreateDir(r.Context(), req.Service, req.Path, req.Config)
	if err != nil {
		writeErr(w, "create_dir", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: okRes})
}

// Copy handles POST /storage/copy.
func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, false, true)
	if !ok {
		return
	}
	okRes, err := h.gw.Copy(r.Context(), req.Service, req.Source, req.Target, req.Config)
	if err != nil {
		writeErr(w, "copy", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: okRes})
}

// Rename handles POST /storage/rename.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, false, true)
	if !ok {
		return
	}
	okRes, err := h.gw.Rename(r.Context(), req.Service, req.Source, req.Target, req.Config)
	if err != nil {
		writeErr(w, "rename", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: okRes})
}

// Capability handles POST /storage/capability.
func (h *Handler) Capability(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOp(w, r, false, false)
	if !ok {
		return
	}
	caps, err := h.gw.Capability(r.Context(), req.Service, req.Config)
	if err != nil {
		writeErr(w, "capability", err)
		return
	}
	writeJSON(w, http.StatusOK, caps)
}
