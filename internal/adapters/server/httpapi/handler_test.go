package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hylla/shootdesk/internal/adapters/server/common"
)

// stubServices provides deterministic responses for handler tests.
type stubServices struct {
	availability  common.Availability
	team          []common.Availability
	events        []common.Event
	conflicts     []common.Conflict
	progress      common.EventProgress
	schedule      common.PersonSchedule
	board         common.Board
	statusResult  common.TaskStatusResult
	history       []common.StatusChange
	contacts      []common.Contact
	overview      common.ProjectOverview
	err           error
	lastAvail     common.AvailabilityRequest
	lastTeam      common.TeamAvailabilityRequest
	lastEvents    common.ListEventsRequest
	lastEventID   string
	lastBoard     common.BoardRequest
	lastStatus    common.ChangeTaskStatusRequest
	lastHistoryID string
	lastLimit     int
	lastSchedule  common.PersonScheduleRequest
	lastOverview  common.ProjectOverviewRequest
	eventWrite    common.EventWriteResult
	taskEdit      common.TaskEditResult
	lastPatchEvt  common.PatchEventRequest
	lastPatchTask common.PatchTaskRequest
}

func (s *stubServices) CheckAvailability(_ context.Context, req common.AvailabilityRequest) (common.Availability, error) {
	s.lastAvail = req
	return s.availability, s.err
}

func (s *stubServices) TeamAvailability(_ context.Context, req common.TeamAvailabilityRequest) ([]common.Availability, error) {
	s.lastTeam = req
	return s.team, s.err
}

func (s *stubServices) ListEvents(_ context.Context, req common.ListEventsRequest) ([]common.Event, error) {
	s.lastEvents = req
	return s.events, s.err
}

func (s *stubServices) EventConflicts(_ context.Context, eventID string) ([]common.Conflict, error) {
	s.lastEventID = eventID
	return s.conflicts, s.err
}

func (s *stubServices) EventProgress(_ context.Context, eventID string) (common.EventProgress, error) {
	s.lastEventID = eventID
	return s.progress, s.err
}

func (s *stubServices) PersonSchedule(_ context.Context, req common.PersonScheduleRequest) (common.PersonSchedule, error) {
	s.lastSchedule = req
	return s.schedule, s.err
}

func (s *stubServices) Board(_ context.Context, req common.BoardRequest) (common.Board, error) {
	s.lastBoard = req
	return s.board, s.err
}

func (s *stubServices) ChangeTaskStatus(_ context.Context, req common.ChangeTaskStatusRequest) (common.TaskStatusResult, error) {
	s.lastStatus = req
	return s.statusResult, s.err
}

func (s *stubServices) TaskHistory(_ context.Context, taskID string, limit int) ([]common.StatusChange, error) {
	s.lastHistoryID = taskID
	s.lastLimit = limit
	return s.history, s.err
}

func (s *stubServices) PatchEvent(_ context.Context, req common.PatchEventRequest) (common.EventWriteResult, error) {
	s.lastPatchEvt = req
	return s.eventWrite, s.err
}

func (s *stubServices) PatchTask(_ context.Context, req common.PatchTaskRequest) (common.TaskEditResult, error) {
	s.lastPatchTask = req
	return s.taskEdit, s.err
}

func (s *stubServices) AssigneeCandidates(context.Context) ([]common.Contact, error) {
	return s.contacts, s.err
}

func (s *stubServices) ProjectOverview(_ context.Context, req common.ProjectOverviewRequest) (common.ProjectOverview, error) {
	s.lastOverview = req
	return s.overview, s.err
}

// serve runs one request through a handler over the stub.
func serve(t *testing.T, svc *stubServices, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	NewHandler(svc).ServeHTTP(rec, req)
	return rec
}

// decodeInto decodes one JSON response body into the requested type.
func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return out
}

// TestHandlerAvailabilitySuccess verifies query mapping and the blocking event payload.
func TestHandlerAvailabilitySuccess(t *testing.T) {
	svc := &stubServices{
		availability: common.Availability{
			Person:        "Raj",
			Available:     false,
			Reason:        "busy",
			BlockingEvent: &common.EventRef{ID: "e2", Name: "Reception Setup", Date: "2026-03-10", Start: "16:00", End: "20:00"},
			BlockingRoles: []string{"site_manager"},
		},
	}
	rec := serve(t, svc, http.MethodGet, "/availability?person=Raj&date=2026-03-10&start=14:00&end=18:00&exclude_event_id=e1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got := decodeInto[common.Availability](t, rec)
	if got.Available || got.BlockingEvent == nil || got.BlockingEvent.Name != "Reception Setup" {
		t.Fatalf("unexpected availability %#v", got)
	}
	if svc.lastAvail.ExcludeEventID != "e1" || svc.lastAvail.Start != "14:00" {
		t.Fatalf("unexpected request %#v", svc.lastAvail)
	}
}

// TestHandlerAvailabilityRequiresPerson verifies fail-closed validation.
func TestHandlerAvailabilityRequiresPerson(t *testing.T) {
	rec := serve(t, &stubServices{}, http.MethodGet, "/availability?date=2026-03-10", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	got := decodeInto[ErrorEnvelope](t, rec)
	if got.Error.Code != "invalid_request" {
		t.Fatalf("code = %q, want invalid_request", got.Error.Code)
	}
}

// TestHandlerTeamAvailabilityFlattensPeople verifies repeated and comma-joined names.
func TestHandlerTeamAvailabilityFlattensPeople(t *testing.T) {
	svc := &stubServices{team: []common.Availability{{Person: "Raj", Available: true, Reason: "free"}}}
	rec := serve(t, svc, http.MethodGet, "/team_availability?person=Raj,%20Asha&person=Vik&date=2026-03-10&start=10:00&end=11:00", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := []string{"Raj", "Asha", "Vik"}
	if fmt.Sprint(svc.lastTeam.People) != fmt.Sprint(want) {
		t.Fatalf("people = %v, want %v", svc.lastTeam.People, want)
	}

	rec = serve(t, svc, http.MethodPost, "/team_availability", `{"people":["Meera"],"date":"2026-03-10","start":"10:00","end":"11:00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(svc.lastTeam.People) != 1 || svc.lastTeam.People[0] != "Meera" {
		t.Fatalf("unexpected POST people %v", svc.lastTeam.People)
	}
}

// TestHandlerEventRoutes verifies list, conflicts, and progress routing.
func TestHandlerEventRoutes(t *testing.T) {
	svc := &stubServices{
		events:    []common.Event{{ID: "e1", Name: "Mehndi"}},
		conflicts: []common.Conflict{{Person: "Raj", Role: "photographer", Date: "2026-03-10"}},
		progress:  common.EventProgress{EventID: "e1", Total: 3, Completed: 1, Percent: 33},
	}
	rec := serve(t, svc, http.MethodGet, "/events?project_id=p1&from=2026-03-01&to=2026-03-31&assigned_to=Raj", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastEvents.AssignedTo != "Raj" || svc.lastEvents.From != "2026-03-01" {
		t.Fatalf("unexpected events request %#v", svc.lastEvents)
	}

	rec = serve(t, svc, http.MethodGet, "/events/e1/conflicts", "")
	if rec.Code != http.StatusOK || svc.lastEventID != "e1" {
		t.Fatalf("conflicts status = %d id = %q", rec.Code, svc.lastEventID)
	}

	rec = serve(t, svc, http.MethodGet, "/events/e1/progress", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d, want %d", rec.Code, http.StatusOK)
	}
	progress := decodeInto[common.EventProgress](t, rec)
	if progress.Percent != 33 {
		t.Fatalf("percent = %d, want 33", progress.Percent)
	}

	rec = serve(t, svc, http.MethodGet, "/events/e1/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown action status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestHandlerChangeTaskStatus verifies body decoding and path precedence.
func TestHandlerChangeTaskStatus(t *testing.T) {
	svc := &stubServices{statusResult: common.TaskStatusResult{
		Task:    common.Task{ID: "t1", Status: "editing"},
		From:    "client_review",
		Changed: true,
	}}
	rec := serve(t, svc, http.MethodPost, "/tasks/t1/status", `{"status":"editing","force":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastStatus.TaskID != "t1" || !svc.lastStatus.Force {
		t.Fatalf("unexpected request %#v", svc.lastStatus)
	}

	rec = serve(t, svc, http.MethodPost, "/tasks/t1/status", `{"task_id":"t2","status":"editing"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = serve(t, svc, http.MethodPost, "/tasks/t1/status", `{"status":"editing","color":"red"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = serve(t, svc, http.MethodGet, "/tasks/t1/status", "")
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("GET status = %d allow = %q", rec.Code, rec.Header().Get("Allow"))
	}
}

// TestHandlerErrorMapping verifies structured status mapping for service errors.
func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "transition", err: fmt.Errorf("change: %w", common.ErrTransitionRejected), wantCode: http.StatusConflict, wantBody: "transition_rejected"},
		{name: "not found", err: common.ErrNotFound, wantCode: http.StatusNotFound, wantBody: "not_found"},
		{name: "invalid", err: common.ErrInvalidRequest, wantCode: http.StatusBadRequest, wantBody: "invalid_request"},
		{name: "internal", err: errors.New("disk full"), wantCode: http.StatusInternalServerError, wantBody: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubServices{err: tc.err}
			rec := serve(t, svc, http.MethodPost, "/tasks/t1/status", `{"status":"printing"}`)
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			got := decodeInto[ErrorEnvelope](t, rec)
			if got.Error.Code != tc.wantBody {
				t.Fatalf("code = %q, want %q", got.Error.Code, tc.wantBody)
			}
		})
	}
}

// TestHandlerBoardAndHistory verifies board validation and history limits.
func TestHandlerBoardAndHistory(t *testing.T) {
	svc := &stubServices{
		board:   common.Board{ProjectID: "p1", Department: "photo", Columns: []common.BoardColumn{{Status: "backlog", Title: "Backlog"}}},
		history: []common.StatusChange{{From: "backlog", To: "editing", OccurredAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}},
	}
	rec := serve(t, svc, http.MethodGet, "/board?department=photo", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing project status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = serve(t, svc, http.MethodGet, "/board?project_id=p1&department=photo", "")
	if rec.Code != http.StatusOK || svc.lastBoard.Department != "photo" {
		t.Fatalf("board status = %d request = %#v", rec.Code, svc.lastBoard)
	}

	rec = serve(t, svc, http.MethodGet, "/tasks/t1/history?limit=5", "")
	if rec.Code != http.StatusOK || svc.lastHistoryID != "t1" || svc.lastLimit != 5 {
		t.Fatalf("history status = %d id = %q limit = %d", rec.Code, svc.lastHistoryID, svc.lastLimit)
	}
	rec = serve(t, svc, http.MethodGet, "/tasks/t1/history?limit=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative limit status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestHandlerOverviewScheduleAndCandidates verifies the remaining read routes.
func TestHandlerOverviewScheduleAndCandidates(t *testing.T) {
	svc := &stubServices{
		overview: common.ProjectOverview{ProjectID: "p1", StateHash: "abc123"},
		schedule: common.PersonSchedule{Person: "Raj"},
		contacts: []common.Contact{{ID: "k1", Name: "Nina", Categories: []string{"post_production"}}},
	}
	rec := serve(t, svc, http.MethodGet, "/projects/p1/overview", "")
	if rec.Code != http.StatusOK || svc.lastOverview.ProjectID != "p1" {
		t.Fatalf("overview status = %d request = %#v", rec.Code, svc.lastOverview)
	}
	rec = serve(t, svc, http.MethodGet, "/schedule?person=Raj&from=2026-03-01", "")
	if rec.Code != http.StatusOK || svc.lastSchedule.Person != "Raj" || svc.lastSchedule.From != "2026-03-01" {
		t.Fatalf("schedule status = %d request = %#v", rec.Code, svc.lastSchedule)
	}
	rec = serve(t, svc, http.MethodGet, "/assignee_candidates", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("candidates status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeInto[map[string][]common.Contact](t, rec)
	if len(body["contacts"]) != 1 || body["contacts"][0].Name != "Nina" {
		t.Fatalf("unexpected contacts %#v", body)
	}
}

// TestHandlerUnknownRoute verifies the 404 envelope.
func TestHandlerUnknownRoute(t *testing.T) {
	rec := serve(t, &stubServices{}, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestHandlerWorkflowsCatalog verifies strict-mode neighbours are published per status.
func TestHandlerWorkflowsCatalog(t *testing.T) {
	rec := serve(t, &stubServices{}, http.MethodGet, "/workflows", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeInto[struct {
		Workflows []common.Workflow `json:"workflows"`
	}](t, rec)
	if len(body.Workflows) != 2 {
		t.Fatalf("workflows = %#v, want photo and video", body.Workflows)
	}
	photo := body.Workflows[0]
	if photo.Department != "photo" || photo.Terminal != "delivered" {
		t.Fatalf("unexpected photo workflow %#v", photo)
	}
	if got := photo.Statuses[0].Adjacent; len(got) != 1 || got[0] != "client_review" {
		t.Fatalf("backlog adjacent = %v, want [client_review]", got)
	}

	rec = serve(t, &stubServices{}, http.MethodPost, "/workflows", "{}")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

// TestHandlerPatchEventReportsStaleWrite verifies PATCH `/events/{id}` forwards the edit and surfaces stale writes.
func TestHandlerPatchEventReportsStaleWrite(t *testing.T) {
	svc := &stubServices{eventWrite: common.EventWriteResult{
		Event:      common.Event{ID: "e1", Name: "Mehndi"},
		Conflicts:  []common.Conflict{{Person: "Raj", Role: "photographer", Date: "2026-03-10"}},
		StaleWrite: true,
	}}
	body := `{"assignments":{"photographer":["Raj"]},"start_date":"2026-03-10","expected_updated_at":"2026-01-02T03:04:05Z"}`
	rec := serve(t, svc, http.MethodPatch, "/events/e1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := decodeInto[common.EventWriteResult](t, rec)
	if !got.StaleWrite || len(got.Conflicts) != 1 {
		t.Fatalf("unexpected result %#v", got)
	}
	req := svc.lastPatchEvt
	if req.EventID != "e1" || req.StartDate == nil || *req.StartDate != "2026-03-10" || req.ExpectedUpdatedAt == nil {
		t.Fatalf("unexpected request %#v", req)
	}
	if names := req.Assignments["photographer"]; len(names) != 1 || names[0] != "Raj" {
		t.Fatalf("assignments = %#v", req.Assignments)
	}

	rec = serve(t, svc, http.MethodPatch, "/events/e1", `{"event_id":"e2"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatch status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = serve(t, svc, http.MethodGet, "/events/e1", "")
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodPatch {
		t.Fatalf("GET status = %d allow = %q", rec.Code, rec.Header().Get("Allow"))
	}
}

// TestHandlerPatchTaskReportsStatusReset verifies PATCH `/tasks/{id}` and error mapping.
func TestHandlerPatchTaskReportsStatusReset(t *testing.T) {
	svc := &stubServices{taskEdit: common.TaskEditResult{
		Task:           common.Task{ID: "t1", Department: "video", Status: "backlog"},
		StatusReset:    true,
		PreviousStatus: "editing",
	}}
	rec := serve(t, svc, http.MethodPatch, "/tasks/t1", `{"department":"video","title":"Teaser"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := decodeInto[common.TaskEditResult](t, rec)
	if !got.StatusReset || got.PreviousStatus != "editing" || got.Task.Status != "backlog" {
		t.Fatalf("unexpected result %#v", got)
	}
	req := svc.lastPatchTask
	if req.TaskID != "t1" || req.Department == nil || *req.Department != "video" || req.Priority != nil {
		t.Fatalf("unexpected request %#v", req)
	}

	rec = serve(t, svc, http.MethodPatch, "/tasks/t1", `{"colour":"red"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	svc.err = common.ErrNotFound
	rec = serve(t, svc, http.MethodPatch, "/tasks/missing", `{"title":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
