// Package httpapi provides the REST HTTP adapter for the list surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hylla/listdock/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	lists    common.ListReader
	items    common.ItemService
	history  common.HistoryService
	transfer common.TransferService
	doctor   common.DoctorService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter. History, transfer, and doctor
// routes are served when items also implements those surfaces.
func NewHandler(lists common.ListReader, items common.ItemService) *Handler {
	h := &Handler{lists: lists, items: items}
	if history, ok := items.(common.HistoryService); ok {
		h.history = history
	}
	if transfer, ok := items.(common.TransferService); ok {
		h.transfer = transfer
	}
	if doctor, ok := items.(common.DoctorService); ok {
		h.doctor = doctor
	}
	return h
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch path {
	case "listing":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListing(w, r)
	case "search":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleSearch(w, r)
	case "items":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleAddItem(w, r)
	case "items/paste":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handlePaste(w, r)
	case "items/move":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMove(w, r)
	case "items/delete":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleDelete(w, r)
	case "undo":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleUndo(w, r)
	case "export":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleExport(w, r)
	case "import":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleImport(w, r)
	case "doctor":
		switch r.Method {
		case http.MethodGet:
			h.handleDoctor(w, r, false)
		case http.MethodPost:
			h.handleDoctor(w, r, true)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	default:
		id, action, ok := resolveItemRoute(path)
		if !ok {
			writeJSONError(w, http.StatusNotFound, APIError{
				Code:    "not_found",
				Message: "endpoint not found",
			})
			return
		}
		switch action {
		case "":
			if r.Method != http.MethodPatch {
				writeMethodNotAllowed(w, http.MethodPatch)
				return
			}
			h.handleUpdateItem(w, r, id)
		case "convert":
			if r.Method != http.MethodPost {
				writeMethodNotAllowed(w, http.MethodPost)
				return
			}
			h.handleConvert(w, r, id)
		}
	}
}

// handleListing serves GET `/listing`.
func (h *Handler) handleListing(w http.ResponseWriter, r *http.Request) {
	if h.lists == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "listing service is not configured",
		})
		return
	}
	listing, err := h.lists.Listing(r.Context(), common.ListingRequest{
		FolderID: strings.TrimSpace(r.URL.Query().Get("folder_id")),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// handleSearch serves GET `/search?q=`.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if h.lists == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "listing service is not configured",
		})
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "q is required",
		})
		return
	}
	items, err := h.lists.Search(r.Context(), query)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleAddItem serves POST `/items`.
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireItems(w) {
		return
	}
	var req common.AddItemRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	item, err := h.items.AddItem(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handlePaste serves POST `/items/paste`.
func (h *Handler) handlePaste(w http.ResponseWriter, r *http.Request) {
	if !h.requireItems(w) {
		return
	}
	var req common.PasteRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	items, err := h.items.Paste(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"items": items})
}

// handleMove serves POST `/items/move`.
func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	if !h.requireItems(w) {
		return
	}
	var req common.MoveRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	items, err := h.items.MoveItems(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleDelete serves POST `/items/delete`.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.requireItems(w) {
		return
	}
	var req common.DeleteRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.items.DeleteItems(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleUpdateItem serves PATCH `/items/{id}`.
func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request, id string) {
	if !h.requireItems(w) {
		return
	}
	var req common.UpdateItemRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if body := strings.TrimSpace(req.ID); body != "" && body != id {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "body id does not match path id",
			Context: map[string]any{"path_id": id, "body_id": body},
		})
		return
	}
	req.ID = id
	item, err := h.items.UpdateItem(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleConvert serves POST `/items/{id}/convert`.
func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request, id string) {
	if !h.requireItems(w) {
		return
	}
	item, err := h.items.ConvertToFolder(r.Context(), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleUndo serves POST `/undo`.
func (h *Handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeNotImplemented(w, "undo")
		return
	}
	result, err := h.history.Undo(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExport serves GET `/export`, returning the raw export array.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if h.transfer == nil {
		writeNotImplemented(w, "export")
		return
	}
	excludeCompleted, err := parseBoolQuery(r, "exclude_completed")
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	data, err := h.transfer.Export(r.Context(), excludeCompleted)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport serves POST `/import` with an export array body.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if h.transfer == nil {
		writeNotImplemented(w, "import")
		return
	}
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		writeErrorFrom(w, fmt.Errorf("read request body: %w", errors.Join(common.ErrInvalidRequest, err)))
		return
	}
	result, err := h.transfer.Import(r.Context(), data)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDoctor serves GET `/doctor` and POST `/doctor`, which also prunes orphans.
func (h *Handler) handleDoctor(w http.ResponseWriter, r *http.Request, prune bool) {
	if h.doctor == nil {
		writeNotImplemented(w, "doctor")
		return
	}
	result, err := h.doctor.Doctor(r.Context(), prune)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// requireItems writes a 503 when no item service is configured.
func (h *Handler) requireItems(w http.ResponseWriter) bool {
	if h.items != nil {
		return true
	}
	writeJSONError(w, http.StatusServiceUnavailable, APIError{
		Code:    "service_unavailable",
		Message: "item service is not configured",
	})
	return false
}

// resolveItemRoute parses `items/{id}` and `items/{id}/convert`.
func resolveItemRoute(path string) (string, string, bool) {
	const prefix = "items/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	parts := strings.Split(strings.TrimPrefix(path, prefix), "/")
	id := strings.TrimSpace(parts[0])
	if id == "" {
		return "", "", false
	}
	switch {
	case len(parts) == 1:
		return id, "", true
	case len(parts) == 2 && parts[1] == "convert":
		return id, "convert", true
	default:
		return "", "", false
	}
}

// parseBoolQuery reads an optional boolean query parameter.
func parseBoolQuery(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, common.ErrInvalidRequest)
	}
	return v, nil
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrUnavailable):
		writeJSONError(w, http.StatusNotImplemented, APIError{
			Code:    "not_implemented",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeNotImplemented writes a 501 for an optional surface the service lacks.
func writeNotImplemented(w http.ResponseWriter, surface string) {
	writeJSONError(w, http.StatusNotImplemented, APIError{
		Code:    "not_implemented",
		Message: surface + " is not available",
	})
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Trailing payloads fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
