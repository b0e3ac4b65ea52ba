package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tasksync/internal/client/services"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/spf13/cobra"
)

// resolveID expands an id prefix to the single live id it matches.
func resolveID(prefix string, ids []string) (string, error) {
	var match []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			match = append(match, id)
		}
	}
	switch len(match) {
	case 0:
		return "", fmt.Errorf("%s: %w", prefix, common.ErrorNotFound)
	case 1:
		return match[0], nil
	}
	return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", prefix, len(match))
}

func (a *App) resolveTask(ctx context.Context, prefix string) (string, error) {
	list, err := a.tasks.ListTasks(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(list))
	for i, t := range list {
		ids[i] = t.ID
	}
	return resolveID(prefix, ids)
}

func (a *App) resolveDomain(ctx context.Context, prefix string) (string, error) {
	list, err := a.tasks.ListDomains(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(list))
	for i, d := range list {
		ids[i] = d.ID
	}
	return resolveID(prefix, ids)
}

type taskFlags struct {
	description string
	priority    string
	status      string
	domain      string
	tags        []string
	due         string
	estimate    int
	recurrence  string
	order       int
}

func (f *taskFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.description, "desc", "", "description")
	fl.StringVar(&f.priority, "priority", "", "low, medium, high or urgent")
	fl.StringVar(&f.domain, "domain", "", "domain id or id prefix")
	fl.StringSliceVar(&f.tags, "tag", nil, "tag (repeatable)")
	fl.StringVar(&f.due, "due", "", "due date, YYYY-MM-DD")
	fl.IntVar(&f.estimate, "estimate", 0, "estimated minutes")
	fl.StringVar(&f.recurrence, "recur", "", "daily, weekly, monthly or yearly")
	fl.IntVar(&f.order, "order", 0, "sort position")
}

func (a *App) addCmd() *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in := services.TaskInput{
				Title:       strings.Join(args, " "),
				Description: f.description,
				Priority:    syncapi.Priority(f.priority),
				Tags:        f.tags,
				Order:       f.order,
			}
			if f.domain != "" {
				id, err := a.resolveDomain(ctx, f.domain)
				if err != nil {
					return err
				}
				in.DomainID = &id
			}
			if f.due != "" {
				in.DueDate = &f.due
			}
			if cmd.Flags().Changed("estimate") {
				in.EstimatedMinutes = &f.estimate
			}
			if f.recurrence != "" {
				r := syncapi.Recurrence(f.recurrence)
				in.Recurrence = &r
			}

			t, err := a.tasks.AddTask(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) editCmd() *cobra.Command {
	var (
		f     taskFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := a.resolveTask(ctx, args[0])
			if err != nil {
				return err
			}

			var domainID *string
			if f.domain != "" {
				d, err := a.resolveDomain(ctx, f.domain)
				if err != nil {
					return err
				}
				domainID = &d
			}

			changed := cmd.Flags().Changed
			t, err := a.tasks.UpdateTask(ctx, id, func(t *syncapi.Task) {
				if changed("title") {
					t.Title = title
				}
				if changed("desc") {
					t.Description = f.description
				}
				if changed("priority") {
					t.Priority = syncapi.Priority(f.priority)
				}
				if changed("status") {
					t.Status = syncapi.Status(f.status)
				}
				if changed("domain") {
					t.DomainID = domainID
				}
				if changed("tag") {
					t.Tags = f.tags
				}
				if changed("due") {
					t.DueDate = nil
					if f.due != "" {
						t.DueDate = &f.due
					}
				}
				if changed("estimate") {
					t.EstimatedMinutes = &f.estimate
				}
				if changed("recur") {
					t.Recurrence = nil
					if f.recurrence != "" {
						r := syncapi.Recurrence(f.recurrence)
						t.Recurrence = &r
					}
				}
				if changed("order") {
					t.Order = f.order
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&f.status, "status", "", "todo, in_progress or done")
	return cmd
}

func (a *App) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := a.resolveTask(ctx, args[0])
			if err != nil {
				return err
			}
			t, err := a.tasks.CompleteTask(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "done %s %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
}

func (a *App) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := a.resolveTask(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.DeleteTask(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", shortID(id))
			return nil
		},
	}
}

func (a *App) listCmd() *cobra.Command {
	var (
		output string
		status string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l", "ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			format, err := resolveOutput(output, w)
			if err != nil {
				return err
			}

			list, err := a.tasks.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				kept := list[:0]
				for _, t := range list {
					if string(t.Status) == status {
						kept = append(kept, t)
					}
				}
				list = kept
			}

			if format == outputJSON {
				return writeJSONLines(w, list)
			}

			rows := make([][]string, 0, len(list))
			for _, t := range list {
				est := ""
				if t.EstimatedMinutes != nil {
					est = strconv.Itoa(*t.EstimatedMinutes) + "m"
				}
				rows = append(rows, []string{
					shortID(t.ID), string(t.Status), string(t.Priority),
					deref(t.DueDate), est, t.Title, strings.Join(t.Tags, ","),
				})
			}
			return writeTable(w, []string{"ID", "STATUS", "PRIORITY", "DUE", "EST", "TITLE", "TAGS"}, rows)
		},
	}
	cmd.Flags().StringVar(&output, "output", outputAuto, "auto, table or json")
	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status")
	return cmd
}
