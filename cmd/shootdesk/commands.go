package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	serveradapter "github.com/hylla/shootdesk/internal/adapters/server"
	servercommon "github.com/hylla/shootdesk/internal/adapters/server/common"
	"github.com/hylla/shootdesk/internal/domain"
	"github.com/spf13/cobra"
)

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	busyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	freeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

// renderTable renders rows as one bordered table.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// writeOutput prints v as JSON, or calls tableFn when tables are requested.
func (o *globalOptions) writeOutput(v any, tableFn func(io.Writer) error) error {
	if o.jsonOutput {
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json output: %w", err)
		}
		_, err = fmt.Fprintln(o.stdout, string(encoded))
		return err
	}
	return tableFn(o.stdout)
}

func newPathsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data, and database paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			out := opts.stdout
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	var httpBind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and MCP tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "serve", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			cfg := serveradapter.Config{
				HTTPBind:      firstNonEmpty(httpBind, env.cfg.Server.HTTPBind),
				APIEndpoint:   firstNonEmpty(apiEndpoint, env.cfg.Server.APIEndpoint),
				MCPEndpoint:   firstNonEmpty(mcpEndpoint, env.cfg.Server.MCPEndpoint),
				ServerName:    opts.appName,
				ServerVersion: version,
			}
			policy, err := env.cfg.ConflictPolicy()
			if err != nil {
				return err
			}
			env.logger.Info("http server starting", "bind", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
			return serveCommandRunner(ctx, cfg, serveradapter.Dependencies{
				Services: env.api,
				Ready:    env.repo.Ping,
				Logger:   env.logger.ServiceLogger(),
				Workflow: serveradapter.WorkflowInfo{
					Mode:           string(env.svc.TransitionMode()),
					ConflictPolicy: string(policy),
				},
			})
		}),
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "HTTP API base endpoint (default from config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP endpoint (default from config)")
	return cmd
}

func newAvailabilityCommand(opts *globalOptions) *cobra.Command {
	var (
		people         []string
		date, from, to string
		excludeEventID string
	)
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Check whether crew members are free in a time window",
		Long:  "Check one or more crew members. Without --person every known contact is checked.",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "availability", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			var answers []servercommon.Availability
			if len(people) == 1 {
				answer, err := env.api.CheckAvailability(ctx, servercommon.AvailabilityRequest{
					Person:         people[0],
					Date:           date,
					Start:          from,
					End:            to,
					ExcludeEventID: excludeEventID,
				})
				if err != nil {
					return err
				}
				answers = []servercommon.Availability{answer}
			} else {
				var err error
				answers, err = env.api.TeamAvailability(ctx, servercommon.TeamAvailabilityRequest{
					People:         people,
					Date:           date,
					Start:          from,
					End:            to,
					ExcludeEventID: excludeEventID,
				})
				if err != nil {
					return err
				}
			}
			return opts.writeOutput(answers, func(w io.Writer) error {
				rows := make([][]string, 0, len(answers))
				for _, a := range answers {
					status := freeStyle.Render("free")
					if !a.Available {
						status = busyStyle.Render("busy")
					}
					blocking := ""
					if a.BlockingEvent != nil {
						blocking = fmt.Sprintf("%s (%s)", a.BlockingEvent.Name, strings.Join(a.BlockingRoles, ", "))
					}
					rows = append(rows, []string{a.Person, status, a.Reason, blocking})
				}
				return renderTable(w, []string{"Person", "Status", "Reason", "Blocking event"}, rows)
			})
		}),
	}
	cmd.Flags().StringSliceVar(&people, "person", nil, "crew member (repeatable)")
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD")
	cmd.Flags().StringVar(&from, "from", "", "window start as HH:MM")
	cmd.Flags().StringVar(&to, "to", "", "window end as HH:MM")
	cmd.Flags().StringVar(&excludeEventID, "exclude", "", "event being edited; ignored during the check")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newEventsCommand(opts *globalOptions) *cobra.Command {
	var req servercommon.ListEventsRequest
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events overlapping a date range",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "events", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			events, err := env.api.ListEvents(ctx, req)
			if err != nil {
				return err
			}
			return opts.writeOutput(events, func(w io.Writer) error {
				rows := make([][]string, 0, len(events))
				for _, e := range events {
					rows = append(rows, []string{e.ID, e.Name, dateSpan(e.StartDate, e.EndDate), timeSpan(e.StartTime, e.EndTime), e.Location, crewSummary(e.Assignments)})
				}
				return renderTable(w, []string{"ID", "Event", "Date", "Time", "Location", "Crew"}, rows)
			})
		}),
	}
	cmd.Flags().StringVar(&req.ProjectID, "project", "", "project identifier")
	cmd.Flags().StringVar(&req.From, "from", "", "first day as YYYY-MM-DD")
	cmd.Flags().StringVar(&req.To, "to", "", "last day as YYYY-MM-DD")
	cmd.Flags().StringVar(&req.AssignedTo, "person", "", "only events assigning this person")
	return cmd
}

func newConflictsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <event-id>",
		Short: "List crew double-bookings caused by one event",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, "conflicts", func(ctx context.Context, env *runtimeEnv, args []string) error {
			conflicts, err := env.api.EventConflicts(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.writeOutput(conflicts, func(w io.Writer) error {
				if len(conflicts) == 0 {
					_, err := fmt.Fprintln(w, "no conflicts")
					return err
				}
				rows := make([][]string, 0, len(conflicts))
				for _, c := range conflicts {
					rows = append(rows, []string{c.Person, c.Role, c.Date, c.BlockingEvent.Name, timeSpan(c.BlockingEvent.Start, c.BlockingEvent.End)})
				}
				return renderTable(w, []string{"Person", "Role", "Date", "Blocking event", "Time"}, rows)
			})
		}),
	}
}

func newProgressCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <event-id>",
		Short: "Show checklist completion for one event",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, "progress", func(ctx context.Context, env *runtimeEnv, args []string) error {
			progress, err := env.api.EventProgress(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.writeOutput(progress, func(w io.Writer) error {
				_, _ = fmt.Fprintf(w, "%d/%d complete (%d%%)\n", progress.Completed, progress.Total, progress.Percent)
				if len(progress.Items) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(progress.Items))
				for _, item := range progress.Items {
					rows = append(rows, []string{item.ID, checkMark(item.Completed), item.ItemName, item.Category, item.AssignedRole})
				}
				return renderTable(w, []string{"ID", "Done", "Item", "Category", "Role"}, rows)
			})
		}),
	}
}

func newScheduleCommand(opts *globalOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "schedule <person>",
		Short: "Show one person's events, tasks, and checklist duties",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, "schedule", func(ctx context.Context, env *runtimeEnv, args []string) error {
			schedule, err := env.api.PersonSchedule(ctx, servercommon.PersonScheduleRequest{Person: args[0], From: from, To: to})
			if err != nil {
				return err
			}
			return opts.writeOutput(schedule, func(w io.Writer) error {
				rows := make([][]string, 0, len(schedule.Events)+len(schedule.Tasks))
				for _, se := range schedule.Events {
					rows = append(rows, []string{"event", se.Event.Name, dateSpan(se.Event.StartDate, se.Event.EndDate), strings.Join(se.Roles, ", ")})
				}
				for _, task := range schedule.Tasks {
					rows = append(rows, []string{"task", task.Title, task.DueDate, task.StatusLabel})
				}
				for _, item := range schedule.ChecklistItems {
					rows = append(rows, []string{"checklist", item.ItemName, "", checkMark(item.Completed)})
				}
				return renderTable(w, []string{"Kind", "What", "When", "Role / status"}, rows)
			})
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "first day as YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day as YYYY-MM-DD")
	return cmd
}

func newBoardCommand(opts *globalOptions) *cobra.Command {
	var req servercommon.BoardRequest
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show one department's task board for a project",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "board", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			board, err := env.api.Board(ctx, req)
			if err != nil {
				return err
			}
			return opts.writeOutput(board, func(w io.Writer) error {
				return renderBoard(w, board)
			})
		}),
	}
	cmd.Flags().StringVar(&req.ProjectID, "project", "", "project identifier")
	cmd.Flags().StringVar(&req.Department, "department", "", "photo or video")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("department")
	return cmd
}

// renderBoard lays columns side by side, one task title per cell.
func renderBoard(w io.Writer, board servercommon.Board) error {
	headers := make([]string, 0, len(board.Columns))
	depth := 0
	for _, col := range board.Columns {
		headers = append(headers, fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks)))
		depth = max(depth, len(col.Tasks))
	}
	rows := make([][]string, depth)
	for i := range rows {
		rows[i] = make([]string, len(board.Columns))
		for c, col := range board.Columns {
			if i < len(col.Tasks) {
				rows[i][c] = col.Tasks[i].Title
			}
		}
	}
	if err := renderTable(w, headers, rows); err != nil {
		return err
	}
	for _, orphan := range board.Orphans {
		_, _ = fmt.Fprintf(w, "unplaced: %s (%s)\n", orphan.Title, orphan.Status)
	}
	return nil
}

func newTransitionCommand(opts *globalOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "transition <task-id> <status>",
		Short: "Move one task to another status of its department workflow",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, "transition", func(ctx context.Context, env *runtimeEnv, args []string) error {
			res, err := env.api.ChangeTaskStatus(ctx, servercommon.ChangeTaskStatusRequest{
				TaskID: args[0],
				Status: args[1],
				Force:  force,
			})
			if err != nil {
				if errors.Is(err, servercommon.ErrTransitionRejected) {
					return fmt.Errorf("%w (rerun with --force to override)", err)
				}
				return err
			}
			return opts.writeOutput(res, func(w io.Writer) error {
				if !res.Changed {
					_, err := fmt.Fprintf(w, "%s already %s\n", res.Task.Title, res.Task.StatusLabel)
					return err
				}
				_, err := fmt.Fprintf(w, "%s: %s -> %s\n", res.Task.Title, res.From, res.Task.Status)
				return err
			})
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "skip adjacency checks in strict mode")
	return cmd
}

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <task-id>",
		Short: "List one task's status changes, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, "history", func(ctx context.Context, env *runtimeEnv, args []string) error {
			changes, err := env.api.TaskHistory(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return opts.writeOutput(changes, func(w io.Writer) error {
				rows := make([][]string, 0, len(changes))
				for _, c := range changes {
					rows = append(rows, []string{c.OccurredAt.Local().Format("2006-01-02 15:04"), c.From, c.To})
				}
				return renderTable(w, []string{"When", "From", "To"}, rows)
			})
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows; 0 means all")
	return cmd
}

func newCandidatesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List post-production contacts who can own tasks",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "candidates", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			contacts, err := env.api.AssigneeCandidates(ctx)
			if err != nil {
				return err
			}
			return opts.writeOutput(contacts, func(w io.Writer) error {
				rows := make([][]string, 0, len(contacts))
				for _, c := range contacts {
					rows = append(rows, []string{c.Name, c.Role, c.Phone, c.Email})
				}
				return renderTable(w, []string{"Name", "Role", "Phone", "Email"}, rows)
			})
		}),
	}
}

func newOverviewCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview <project-id>",
		Short: "Summarize one project's events, boards, and conflicts",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, "overview", func(ctx context.Context, env *runtimeEnv, args []string) error {
			overview, err := env.api.ProjectOverview(ctx, servercommon.ProjectOverviewRequest{ProjectID: args[0]})
			if err != nil {
				return err
			}
			return opts.writeOutput(overview, func(w io.Writer) error {
				_, _ = fmt.Fprintf(w, "%s [%s] %d%% complete, %d events, %d conflicts\n",
					overview.ProjectName, overview.Status, overview.ProgressPercentage, len(overview.Events), overview.ConflictCount)
				rows := make([][]string, 0, len(overview.Departments))
				for _, dept := range overview.Departments {
					rows = append(rows, []string{dept.Department, strconv.Itoa(dept.TotalTasks), strconv.Itoa(dept.Delivered), statusCounts(dept.StatusCounts)})
				}
				if err := renderTable(w, []string{"Department", "Tasks", "Delivered", "By status"}, rows); err != nil {
					return err
				}
				for _, warning := range overview.Warnings {
					_, _ = fmt.Fprintf(w, "warning: %s\n", warning)
				}
				return nil
			})
		}),
	}
}

func newTickCommand(opts *globalOptions) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "tick <checklist-item-id>",
		Short: "Mark one checklist item complete",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, "tick", func(ctx context.Context, env *runtimeEnv, args []string) error {
			item, err := env.svc.SetChecklistItemCompleted(ctx, args[0], !undo)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(opts.stdout, "%s %s\n", checkMark(item.Completed), item.ItemName)
			return err
		}),
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the item incomplete instead")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func dateSpan(start, end string) string {
	if end == "" || end == start {
		return start
	}
	return start + " .. " + end
}

func timeSpan(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	default:
		return start + "-" + end
	}
}

func checkMark(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// crewSummary flattens role assignments in canonical role order.
func crewSummary(assignments map[string][]string) string {
	parts := make([]string, 0, len(assignments))
	for _, role := range domain.EventRoles() {
		names := assignments[string(role)]
		if len(names) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", role, strings.Join(names, ", ")))
	}
	return strings.Join(parts, "; ")
}

func statusCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
