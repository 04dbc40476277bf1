package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	servercommon "github.com/hylla/shootdesk/internal/adapters/server/common"
	"github.com/spf13/cobra"
)

func newEditCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change an existing event's staffing or a task's details",
	}
	cmd.AddCommand(
		newEditEventCommand(opts),
		newEditTaskCommand(opts),
	)
	return cmd
}

func newEditEventCommand(opts *globalOptions) *cobra.Command {
	var (
		assign   []string
		expected string
	)
	cmd := &cobra.Command{
		Use:   "event <event-id>",
		Short: "Restaff event roles",
		Long:  "Replace the people on the named roles with --assign role=Name[,Name]. Roles not named keep their crew; role= empties one.",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, "edit event", func(ctx context.Context, env *runtimeEnv, args []string) error {
			if len(assign) == 0 {
				return fmt.Errorf("edit event: pass at least one --assign")
			}
			assignments, err := parseAssignments(assign)
			if err != nil {
				return err
			}
			req := servercommon.PatchEventRequest{
				EventID:     args[0],
				Assignments: make(map[string][]string, len(assignments)),
			}
			for role, names := range assignments {
				req.Assignments[string(role)] = []string(names)
			}
			if req.ExpectedUpdatedAt, err = optionalTimestamp(expected); err != nil {
				return err
			}
			res, err := env.api.PatchEvent(ctx, req)
			if err != nil {
				return err
			}
			return opts.writeOutput(res, func(w io.Writer) error {
				_, _ = fmt.Fprintf(w, "event %s %q restaffed\n", res.Event.ID, res.Event.Name)
				return writeEventWarnings(w, res)
			})
		}),
	}
	cmd.Flags().StringArrayVar(&assign, "assign", nil, "role=Name[,Name] (repeatable)")
	cmd.Flags().StringVar(&expected, "expected-updated-at", "", "updated_at from your last read; a newer save is reported")
	return cmd
}

func newRescheduleCommand(opts *globalOptions) *cobra.Command {
	var (
		startDate, endDate string
		startTime, endTime string
		expected           string
	)
	cmd := &cobra.Command{
		Use:   "reschedule <event-id>",
		Short: "Move an event to other days or hours",
		Long:  "Move an event. Flags left out keep the stored value; pass an empty value to clear an end date or time.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withRuntime(opts, "reschedule", func(ctx context.Context, env *runtimeEnv, args []string) error {
		req := servercommon.PatchEventRequest{EventID: args[0]}
		req.StartDate = changedString(cmd, "date", startDate)
		req.EndDate = changedString(cmd, "end-date", endDate)
		req.StartTime = changedString(cmd, "start", startTime)
		req.EndTime = changedString(cmd, "end", endTime)
		if req.StartDate == nil && req.EndDate == nil && req.StartTime == nil && req.EndTime == nil {
			return fmt.Errorf("reschedule: pass --date, --end-date, --start, or --end")
		}
		var err error
		if req.ExpectedUpdatedAt, err = optionalTimestamp(expected); err != nil {
			return err
		}
		res, err := env.api.PatchEvent(ctx, req)
		if err != nil {
			return err
		}
		return opts.writeOutput(res, func(w io.Writer) error {
			when := res.Event.StartDate
			if res.Event.EndDate != "" {
				when += " to " + res.Event.EndDate
			}
			if res.Event.StartTime != "" {
				when += " " + res.Event.StartTime + "-" + res.Event.EndTime
			}
			_, _ = fmt.Fprintf(w, "event %s %q now %s\n", res.Event.ID, res.Event.Name, when)
			return writeEventWarnings(w, res)
		})
	})
	flags := cmd.Flags()
	flags.StringVar(&startDate, "date", "", "first day as YYYY-MM-DD")
	flags.StringVar(&endDate, "end-date", "", "last day for multi-day events")
	flags.StringVar(&startTime, "start", "", "start time as HH:MM")
	flags.StringVar(&endTime, "end", "", "end time as HH:MM")
	flags.StringVar(&expected, "expected-updated-at", "", "updated_at from your last read; a newer save is reported")
	return cmd
}

func newEditTaskCommand(opts *globalOptions) *cobra.Command {
	var (
		title, department, category string
		priority, due               string
		description, deliverables   string
		assignee                    string
		hours                       float64
	)
	cmd := &cobra.Command{
		Use:   "task <task-id>",
		Short: "Edit a task's details or move it to another department",
		Long:  "Edit a task. Moving it to another department restarts it at that pipeline's first status.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withRuntime(opts, "edit task", func(ctx context.Context, env *runtimeEnv, args []string) error {
		req := servercommon.PatchTaskRequest{
			TaskID:               args[0],
			Title:                changedString(cmd, "title", title),
			Department:           changedString(cmd, "department", department),
			Category:             changedString(cmd, "category", category),
			Priority:             changedString(cmd, "priority", priority),
			DueDate:              changedString(cmd, "due", due),
			Description:          changedString(cmd, "description", description),
			ExpectedDeliverables: changedString(cmd, "deliverables", deliverables),
			AssignedTo:           changedString(cmd, "assign", assignee),
		}
		if cmd.Flags().Changed("hours") {
			req.EstimatedHours = &hours
		}
		res, err := env.api.PatchTask(ctx, req)
		if err != nil {
			return err
		}
		return opts.writeOutput(res, func(w io.Writer) error {
			if res.StatusReset {
				_, err := fmt.Fprintf(w, "%s moved to %s; status reset %s -> %s\n", res.Task.Title, res.Task.Department, res.PreviousStatus, res.Task.Status)
				return err
			}
			_, err := fmt.Fprintf(w, "task %s %q updated\n", res.Task.ID, res.Task.Title)
			return err
		})
	})
	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "task title")
	flags.StringVar(&department, "department", "", "photo or video")
	flags.StringVar(&category, "category", "", "task category")
	flags.StringVar(&priority, "priority", "", "low, medium, high, or urgent")
	flags.StringVar(&due, "due", "", "due date as YYYY-MM-DD; empty clears it")
	flags.Float64Var(&hours, "hours", 0, "estimated hours")
	flags.StringVar(&description, "description", "", "free-form description")
	flags.StringVar(&deliverables, "deliverables", "", "expected deliverables")
	flags.StringVar(&assignee, "assign", "", "owner name")
	return cmd
}

// writeEventWarnings prints the stale-write notice and any double-bookings.
func writeEventWarnings(w io.Writer, res servercommon.EventWriteResult) error {
	if res.StaleWrite {
		if _, err := fmt.Fprintln(w, "warning: event changed since it was read; this edit overwrote that change"); err != nil {
			return err
		}
	}
	for _, c := range res.Conflicts {
		if _, err := fmt.Fprintf(w, "warning: %s (%s) is already on %q that day\n", c.Person, c.Role, c.BlockingEvent.Name); err != nil {
			return err
		}
	}
	return nil
}

// changedString returns the flag value only when the flag was passed.
func changedString(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

// optionalTimestamp parses an RFC 3339 --expected-updated-at value.
func optionalTimestamp(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("parse --expected-updated-at: %w", err)
	}
	return &t, nil
}
