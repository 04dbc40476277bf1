// Package httpapi provides the REST HTTP adapter for the server surfaces.
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

	"github.com/hylla/shootdesk/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	services common.Services
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

// NewHandler constructs one HTTP API adapter.
func NewHandler(services common.Services) *Handler {
	return &Handler{services: services}
}

// collectionRoutes maps read-only top-level paths to their handlers.
func (h *Handler) collectionRoutes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"availability":        h.handleAvailability,
		"events":              h.handleListEvents,
		"board":               h.handleBoard,
		"assignee_candidates": h.handleAssigneeCandidates,
		"schedule":            h.handlePersonSchedule,
		"workflows":           handleWorkflows,
	}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.services == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "scheduling service is not configured",
		})
		return
	}
	path := normalizePath(r.URL.Path)
	if path == "team_availability" {
		switch r.Method {
		case http.MethodGet:
			h.handleTeamAvailabilityQuery(w, r)
		case http.MethodPost:
			h.handleTeamAvailabilityBody(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	}
	if handle, ok := h.collectionRoutes()[path]; ok {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		handle(w, r)
		return
	}

	if id, ok := resolveResource(path, "events/"); ok {
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w, http.MethodPatch)
			return
		}
		h.handlePatchEvent(w, r, id)
		return
	}
	if id, ok := resolveResource(path, "tasks/"); ok {
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w, http.MethodPatch)
			return
		}
		h.handlePatchTask(w, r, id)
		return
	}
	if id, action, ok := resolveResourceAction(path, "events/"); ok {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		switch action {
		case "conflicts":
			h.handleEventConflicts(w, r, id)
			return
		case "progress":
			h.handleEventProgress(w, r, id)
			return
		}
	}
	if id, action, ok := resolveResourceAction(path, "tasks/"); ok {
		switch action {
		case "status":
			if r.Method != http.MethodPost {
				writeMethodNotAllowed(w, http.MethodPost)
				return
			}
			h.handleChangeTaskStatus(w, r, id)
			return
		case "history":
			if r.Method != http.MethodGet {
				writeMethodNotAllowed(w, http.MethodGet)
				return
			}
			h.handleTaskHistory(w, r, id)
			return
		}
	}
	if id, action, ok := resolveResourceAction(path, "projects/"); ok && action == "overview" {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleProjectOverview(w, r, id)
		return
	}
	writeJSONError(w, http.StatusNotFound, APIError{
		Code:    "not_found",
		Message: "endpoint not found",
	})
}

// handleAvailability serves GET `/availability`.
func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := common.AvailabilityRequest{
		Person:         strings.TrimSpace(query.Get("person")),
		Date:           query.Get("date"),
		Start:          query.Get("start"),
		End:            query.Get("end"),
		ExcludeEventID: strings.TrimSpace(query.Get("exclude_event_id")),
	}
	if req.Person == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "person is required",
		})
		return
	}
	availability, err := h.services.CheckAvailability(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

// handleTeamAvailabilityQuery serves GET `/team_availability`.
func (h *Handler) handleTeamAvailabilityQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := common.TeamAvailabilityRequest{
		People:         splitPeople(query["person"]),
		Date:           query.Get("date"),
		Start:          query.Get("start"),
		End:            query.Get("end"),
		ExcludeEventID: strings.TrimSpace(query.Get("exclude_event_id")),
	}
	h.writeTeamAvailability(w, r, req)
}

// handleTeamAvailabilityBody serves POST `/team_availability`.
func (h *Handler) handleTeamAvailabilityBody(w http.ResponseWriter, r *http.Request) {
	var req common.TeamAvailabilityRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	h.writeTeamAvailability(w, r, req)
}

// writeTeamAvailability runs one team query and writes the answers.
func (h *Handler) writeTeamAvailability(w http.ResponseWriter, r *http.Request, req common.TeamAvailabilityRequest) {
	answers, err := h.services.TeamAvailability(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"people": answers,
	})
}

// handleWorkflows serves GET `/workflows`.
func handleWorkflows(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"workflows": common.WorkflowCatalog(),
	})
}

// handleListEvents serves GET `/events`.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	events, err := h.services.ListEvents(r.Context(), common.ListEventsRequest{
		ProjectID:  query.Get("project_id"),
		From:       query.Get("from"),
		To:         query.Get("to"),
		AssignedTo: query.Get("assigned_to"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
	})
}

// handleEventConflicts serves GET `/events/{id}/conflicts`.
func (h *Handler) handleEventConflicts(w http.ResponseWriter, r *http.Request, eventID string) {
	conflicts, err := h.services.EventConflicts(r.Context(), eventID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event_id":  eventID,
		"conflicts": conflicts,
	})
}

// handleEventProgress serves GET `/events/{id}/progress`.
func (h *Handler) handleEventProgress(w http.ResponseWriter, r *http.Request, eventID string) {
	progress, err := h.services.EventProgress(r.Context(), eventID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// handleBoard serves GET `/board`.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := common.BoardRequest{
		ProjectID:  strings.TrimSpace(query.Get("project_id")),
		Department: strings.TrimSpace(query.Get("department")),
	}
	if req.ProjectID == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "project_id is required",
		})
		return
	}
	board, err := h.services.Board(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleChangeTaskStatus serves POST `/tasks/{id}/status`.
func (h *Handler) handleChangeTaskStatus(w http.ResponseWriter, r *http.Request, taskID string) {
	var req common.ChangeTaskStatusRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if body := strings.TrimSpace(req.TaskID); body != "" && body != taskID {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "task_id in body does not match path",
		})
		return
	}
	req.TaskID = taskID
	res, err := h.services.ChangeTaskStatus(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handlePatchEvent serves PATCH `/events/{id}`.
func (h *Handler) handlePatchEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	var req common.PatchEventRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if body := strings.TrimSpace(req.EventID); body != "" && body != eventID {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "event_id in body does not match path",
		})
		return
	}
	req.EventID = eventID
	res, err := h.services.PatchEvent(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handlePatchTask serves PATCH `/tasks/{id}`.
func (h *Handler) handlePatchTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req common.PatchTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if body := strings.TrimSpace(req.TaskID); body != "" && body != taskID {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "task_id in body does not match path",
		})
		return
	}
	req.TaskID = taskID
	res, err := h.services.PatchTask(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleTaskHistory serves GET `/tasks/{id}/history`.
func (h *Handler) handleTaskHistory(w http.ResponseWriter, r *http.Request, taskID string) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = parsed
	}
	changes, err := h.services.TaskHistory(r.Context(), taskID, limit)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id": taskID,
		"changes": changes,
	})
}

// handleAssigneeCandidates serves GET `/assignee_candidates`.
func (h *Handler) handleAssigneeCandidates(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.services.AssigneeCandidates(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": contacts,
	})
}

// handlePersonSchedule serves GET `/schedule`.
func (h *Handler) handlePersonSchedule(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	schedule, err := h.services.PersonSchedule(r.Context(), common.PersonScheduleRequest{
		Person: query.Get("person"),
		From:   query.Get("from"),
		To:     query.Get("to"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// handleProjectOverview serves GET `/projects/{id}/overview`.
func (h *Handler) handleProjectOverview(w http.ResponseWriter, r *http.Request, projectID string) {
	overview, err := h.services.ProjectOverview(r.Context(), common.ProjectOverviewRequest{ProjectID: projectID})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// resolveResource parses `{prefix}{id}` with no trailing action.
func resolveResource(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(path, prefix))
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// resolveResourceAction parses `{prefix}{id}/{action}`.
func resolveResourceAction(path, prefix string) (string, string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	id, action, ok := strings.Cut(rest, "/")
	id = strings.TrimSpace(id)
	if !ok || id == "" || action == "" || strings.Contains(action, "/") {
		return "", "", false
	}
	return id, action, true
}

// splitPeople flattens repeated and comma-joined person parameters.
func splitPeople(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSONError(w, http.StatusInternalServerError, APIError{Code: "internal_error", Message: "unknown error"})
		return
	}
	apiErr := APIError{Code: common.ErrorCode(err), Message: err.Error()}
	status := http.StatusInternalServerError
	switch apiErr.Code {
	case "transition_rejected":
		status = http.StatusConflict
		apiErr.Hint = "Move one column at a time or pass force=true."
	case "not_found":
		status = http.StatusNotFound
	case "invalid_request":
		status = http.StatusBadRequest
	}
	writeJSONError(w, status, apiErr)
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
