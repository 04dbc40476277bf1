package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/shootdesk/internal/app"
	"github.com/hylla/shootdesk/internal/domain"
	"github.com/spf13/cobra"
)

func newAddCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record projects, events, tasks, contacts, and checklist items",
	}
	cmd.AddCommand(
		newAddProjectCommand(opts),
		newAddEventCommand(opts),
		newAddTaskCommand(opts),
		newAddContactCommand(opts),
		newAddChecklistCommand(opts),
	)
	return cmd
}

func newAddProjectCommand(opts *globalOptions) *cobra.Command {
	var name, eventDate, eventType, location, serviceType string
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create a client booking",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "add project", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			date, err := optionalDate("date", eventDate)
			if err != nil {
				return err
			}
			project, err := env.svc.CreateProject(ctx, app.CreateProjectInput{
				Name:        name,
				EventDate:   date,
				EventType:   eventType,
				Location:    location,
				ServiceType: serviceType,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(opts.stdout, "project %s %q\n", project.ID, project.Name)
			return err
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&eventDate, "date", "", "main event day as YYYY-MM-DD")
	cmd.Flags().StringVar(&eventType, "type", "", "event type, e.g. wedding")
	cmd.Flags().StringVar(&location, "location", "", "venue")
	cmd.Flags().StringVar(&serviceType, "service", "", "photo, video, or both")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAddEventCommand(opts *globalOptions) *cobra.Command {
	var (
		projectID, name       string
		startDate, endDate    string
		startTime, endTime    string
		location, mapLink     string
		details, instructions string
		assign                []string
	)
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Schedule an event and staff its roles",
		Long:  "Schedule an event. Staff roles with --assign role=Name[,Name]. Double-bookings are reported, never rejected.",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "add event", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			start, err := domain.ParseDate(startDate)
			if err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
			end, err := optionalDate("end-date", endDate)
			if err != nil {
				return err
			}
			startClock, err := optionalClock("start", startTime)
			if err != nil {
				return err
			}
			endClock, err := optionalClock("end", endTime)
			if err != nil {
				return err
			}
			assignments, err := parseAssignments(assign)
			if err != nil {
				return err
			}
			res, err := env.svc.CreateEvent(ctx, app.CreateEventInput{
				ProjectID:    projectID,
				Name:         name,
				StartDate:    start,
				EndDate:      end,
				StartTime:    startClock,
				EndTime:      endClock,
				Location:     location,
				MapLink:      mapLink,
				Details:      details,
				Instructions: instructions,
				Assignments:  assignments,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(opts.stdout, "event %s %q\n", res.Event.ID, res.Event.Name)
			for _, c := range res.Conflicts {
				_, _ = fmt.Fprintf(opts.stdout, "warning: %s (%s) is already on %q that day\n", c.Person, c.Role, c.BlockingEvent.Name)
			}
			return nil
		}),
	}
	flags := cmd.Flags()
	flags.StringVar(&projectID, "project", "", "project identifier")
	flags.StringVar(&name, "name", "", "event name")
	flags.StringVar(&startDate, "date", "", "first day as YYYY-MM-DD")
	flags.StringVar(&endDate, "end-date", "", "last day for multi-day events")
	flags.StringVar(&startTime, "start", "", "start time as HH:MM")
	flags.StringVar(&endTime, "end", "", "end time as HH:MM")
	flags.StringVar(&location, "location", "", "venue")
	flags.StringVar(&mapLink, "map", "", "map link")
	flags.StringVar(&details, "details", "", "free-form details")
	flags.StringVar(&instructions, "instructions", "", "crew instructions")
	flags.StringArrayVar(&assign, "assign", nil, "role=Name[,Name] (repeatable)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newAddTaskCommand(opts *globalOptions) *cobra.Command {
	var (
		in                        app.CreateTaskInput
		department, priority, due string
	)
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create a post-production task",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "add task", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			dept, err := domain.ParseDepartment(department)
			if err != nil {
				return fmt.Errorf("parse --department: %w", err)
			}
			prio, err := domain.ParsePriority(priority)
			if err != nil {
				return fmt.Errorf("parse --priority: %w", err)
			}
			dueDate, err := optionalDate("due", due)
			if err != nil {
				return err
			}
			in.Department = dept
			in.Priority = prio
			in.DueDate = dueDate
			task, err := env.svc.CreateTask(ctx, in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(opts.stdout, "task %s %q (%s)\n", task.ID, task.Title, task.Status)
			return err
		}),
	}
	flags := cmd.Flags()
	flags.StringVar(&in.ProjectID, "project", "", "project identifier")
	flags.StringVar(&in.Title, "title", "", "task title")
	flags.StringVar(&department, "department", "", "photo or video")
	flags.StringVar(&in.Category, "category", "", "category, e.g. album")
	flags.StringVar(&priority, "priority", "", "low, medium, high, or urgent")
	flags.StringVar(&due, "due", "", "due day as YYYY-MM-DD")
	flags.Float64Var(&in.EstimatedHours, "hours", 0, "estimated hours")
	flags.StringVar(&in.Description, "description", "", "description")
	flags.StringVar(&in.ExpectedDeliverables, "deliverables", "", "expected deliverables")
	flags.StringVar(&in.AssignedTo, "assign", "", "owner name")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("department")
	return cmd
}

func newAddContactCommand(opts *globalOptions) *cobra.Command {
	var (
		in         app.CreateContactInput
		categories []string
	)
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Add a crew or post-production team member",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "add contact", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			in.Categories = in.Categories[:0]
			for _, raw := range categories {
				category, err := domain.ParseContactCategory(raw)
				if err != nil {
					return fmt.Errorf("parse --category %q: %w", raw, err)
				}
				in.Categories = append(in.Categories, category)
			}
			contact, err := env.svc.CreateContact(ctx, in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(opts.stdout, "contact %s %q\n", contact.ID, contact.Name)
			return err
		}),
	}
	flags := cmd.Flags()
	flags.StringVar(&in.Name, "name", "", "contact name")
	flags.StringVar(&in.Role, "role", "", "job title")
	flags.StringVar(&in.Phone, "phone", "", "phone number")
	flags.StringVar(&in.WhatsApp, "whatsapp", "", "WhatsApp number")
	flags.StringVar(&in.Email, "email", "", "email address")
	flags.StringSliceVar(&categories, "category", nil, "crew or post_production (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAddChecklistCommand(opts *globalOptions) *cobra.Command {
	var in app.AddChecklistItemInput
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Add an equipment or preparation item to an event",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "add checklist", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			item, err := env.svc.AddChecklistItem(ctx, in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(opts.stdout, "checklist %s %q\n", item.ID, item.ItemName)
			return err
		}),
	}
	flags := cmd.Flags()
	flags.StringVar(&in.EventID, "event", "", "event identifier")
	flags.StringVar(&in.ItemName, "item", "", "item name")
	flags.StringVar(&in.Category, "category", "", "category, e.g. lighting")
	flags.StringVar(&in.AssignedRole, "role", "", "responsible role")
	flags.StringVar(&in.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func optionalDate(flag, raw string) (*domain.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("parse --%s: %w", flag, err)
	}
	return &d, nil
}

func optionalClock(flag, raw string) (*domain.ClockTime, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	c, err := domain.ParseClockTime(raw)
	if err != nil {
		return nil, fmt.Errorf("parse --%s: %w", flag, err)
	}
	return &c, nil
}

// parseAssignments decodes repeated role=Name[,Name] flags. Repeating a role appends.
func parseAssignments(raw []string) (map[domain.Role]domain.RoleList, error) {
	out := map[domain.Role]domain.RoleList{}
	for _, entry := range raw {
		roleRaw, names, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("parse --assign %q: want role=Name[,Name]", entry)
		}
		role, err := domain.ParseRole(roleRaw)
		if err != nil {
			return nil, fmt.Errorf("parse --assign %q: %w", entry, err)
		}
		merged := append(append([]string(nil), out[role]...), strings.Split(names, ",")...)
		out[role] = domain.NewRoleList(merged...)
	}
	return out, nil
}
