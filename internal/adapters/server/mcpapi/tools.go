package mcpapi

import (
	"context"
	"fmt"

	"github.com/hylla/shootdesk/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerAvailabilityTools registers the single-person and team availability tools.
func registerAvailabilityTools(srv *mcpserver.MCPServer, availability common.AvailabilityService) {
	srv.AddTool(
		mcp.NewTool(
			"shootdesk.check_availability",
			mcp.WithDescription("Report whether one crew member is free in a time window, and which event blocks them if not."),
			mcp.WithString("person", mcp.Required(), mcp.Description("Crew member name")),
			mcp.WithString("date", mcp.Required(), mcp.Description("Day as YYYY-MM-DD")),
			mcp.WithString("start", mcp.Required(), mcp.Description("Window start as HH:MM")),
			mcp.WithString("end", mcp.Required(), mcp.Description("Window end as HH:MM")),
			mcp.WithString("exclude_event_id", mcp.Description("Event being edited; ignored during the check")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			person, err := req.RequireString("person")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			answer, err := availability.CheckAvailability(ctx, common.AvailabilityRequest{
				Person:         person,
				Date:           req.GetString("date", ""),
				Start:          req.GetString("start", ""),
				End:            req.GetString("end", ""),
				ExcludeEventID: req.GetString("exclude_event_id", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(answer)
			if err != nil {
				return nil, fmt.Errorf("encode check_availability result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"shootdesk.team_availability",
			mcp.WithDescription("Report availability for several crew members in one window. Omit people to check the whole roster."),
			mcp.WithArray("people", mcp.Description("Crew member names"), mcp.WithStringItems()),
			mcp.WithString("date", mcp.Required(), mcp.Description("Day as YYYY-MM-DD")),
			mcp.WithString("start", mcp.Required(), mcp.Description("Window start as HH:MM")),
			mcp.WithString("end", mcp.Required(), mcp.Description("Window end as HH:MM")),
			mcp.WithString("exclude_event_id", mcp.Description("Event being edited; ignored during the check")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			answers, err := availability.TeamAvailability(ctx, common.TeamAvailabilityRequest{
				People:         req.GetStringSlice("people", nil),
				Date:           req.GetString("date", ""),
				Start:          req.GetString("start", ""),
				End:            req.GetString("end", ""),
				ExcludeEventID: req.GetString("exclude_event_id", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"people": answers})
			if err != nil {
				return nil, fmt.Errorf("encode team_availability result: %w", err)
			}
			return result, nil
		},
	)
}

// registerEventTools registers calendar, conflict, checklist, and schedule tools.
func registerEventTools(srv *mcpserver.MCPServer, events common.EventService) {
	srv.AddTool(
		mcp.NewTool(
			"shootdesk.list_events",
			mcp.WithDescription("List events overlapping a date range, optionally only those staffing one person."),
			mcp.WithString("project_id", mcp.Description("Project identifier")),
			mcp.WithString("from", mcp.Description("First day as YYYY-MM-DD")),
			mcp.WithString("to", mcp.Description("Last day as YYYY-MM-DD")),
			mcp.WithString("assigned_to", mcp.Description("Only events assigning this person")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := events.ListEvents(ctx, common.ListEventsRequest{
				ProjectID:  req.GetString("project_id", ""),
				From:       req.GetString("from", ""),
				To:         req.GetString("to", ""),
				AssignedTo: req.GetString("assigned_to", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"events": rows})
			if err != nil {
				return nil, fmt.Errorf("encode list_events result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"shootdesk.event_conflicts",
			mcp.WithDescription("List crew double-bookings caused by one event."),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			eventID, err := req.RequireString("event_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			conflicts, err := events.EventConflicts(ctx, eventID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"event_id": eventID, "conflicts": conflicts})
			if err != nil {
				return nil, fmt.Errorf("encode event_conflicts result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"shootdesk.event_progress",
			mcp.WithDescription("Report checklist completion for one event."),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			eventID, err := req.RequireString("event_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			progress, err := events.EventProgress(ctx, eventID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(progress)
			if err != nil {
				return nil, fmt.Errorf("encode event_progress result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"shootdesk.person_schedule",
			mcp.WithDescription("Return one person's events, tasks, and checklist duties."),
			mcp.WithString("person", mcp.Required(), mcp.Description("Crew member name")),
			mcp.WithString("from", mcp.Description("First day as YYYY-MM-DD")),
			mcp.WithString("to", mcp.Description("Last day as YYYY-MM-DD")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			person, err := req.RequireString("person")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			schedule, err := events.PersonSchedule(ctx, common.PersonScheduleRequest{
				Person: person,
				From:   req.GetString("from", ""),
				To:     req.GetString("to", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(schedule)
			if err != nil {
				return nil, fmt.Errorf("encode person_schedule result: %w", err)
			}
			return result, nil
		},
	)
}

// registerWorkflowTools registers the board and task status tools.
func registerWorkflowTools(srv *mcpserver.MCPServer, workflow common.WorkflowService) {
	srv.AddTool(
		mcp.NewTool(
			"shootdesk.board",
			mcp.WithDescription("Return one department's task board for a project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("department", mcp.Required(), mcp.Description("Department"), mcp.Enum("photo", "video")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			department, err := req.RequireString("department")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			board, err := workflow.Board(ctx, common.BoardRequest{ProjectID: projectID, Department: department})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(board)
			if err != nil {
				return nil, fmt.Errorf("encode board result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"shootdesk.change_task_status",
			mcp.WithDescription("Move one task to another status of its department workflow."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target status")),
			mcp.WithBoolean("force", mcp.Description("Skip adjacency checks in strict mode")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			res, err := workflow.ChangeTaskStatus(ctx, common.ChangeTaskStatusRequest{
				TaskID: taskID,
				Status: status,
				Force:  req.GetBool("force", false),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(res)
			if err != nil {
				return nil, fmt.Errorf("encode change_task_status result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"shootdesk.task_history",
			mcp.WithDescription("List one task's status changes, newest first."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows; 0 means all")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			changes, err := workflow.TaskHistory(ctx, taskID, req.GetInt("limit", 0))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"task_id": taskID, "changes": changes})
			if err != nil {
				return nil, fmt.Errorf("encode task_history result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"shootdesk.workflows",
			mcp.WithDescription("List each department's ordered statuses and the neighbours a strict move may reach."),
		),
		func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := mcp.NewToolResultJSON(map[string]any{"workflows": common.WorkflowCatalog()})
			if err != nil {
				return nil, fmt.Errorf("encode workflows result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"shootdesk.assignee_candidates",
			mcp.WithDescription("List post-production contacts who can own tasks."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			contacts, err := workflow.AssigneeCandidates(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"contacts": contacts})
			if err != nil {
				return nil, fmt.Errorf("encode assignee_candidates result: %w", err)
			}
			return result, nil
		},
	)
}

// registerOverviewTool registers the project overview tool.
func registerOverviewTool(srv *mcpserver.MCPServer, overview common.OverviewService) {
	srv.AddTool(
		mcp.NewTool(
			"shootdesk.project_overview",
			mcp.WithDescription("Return a summary-first snapshot of one project with a change-detection hash."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			out, err := overview.ProjectOverview(ctx, common.ProjectOverviewRequest{ProjectID: projectID})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(out)
			if err != nil {
				return nil, fmt.Errorf("encode project_overview result: %w", err)
			}
			return result, nil
		},
	)
}
