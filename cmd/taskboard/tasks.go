package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/editor"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/tasks"
	"github.com/nhle/taskboard/internal/theme"
)

func listCmd(opts *rootOptions) *cobra.Command {
	var (
		filter string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print tasks and their counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return err
			}

			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.Load(cmd.Context()); err != nil {
				return err
			}

			visible := []model.Task{}
			for _, t := range s.svc.View(f) {
				visible = append(visible, t)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(visible)
			}
			printTasks(out, visible, s.svc.Counts(), time.Now())
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Filter by status (all, completed, incomplete)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}

// printTasks renders a table of tasks followed by the counts line.
func printTasks(w io.Writer, list []model.Task, counts model.Counts, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks.")
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
			Headers("ID", "NAME", "STATUS", "ASSIGNED", "DUE", "REMAINING")
		for _, task := range list {
			t.Row(
				task.ID,
				task.Name,
				string(task.Status),
				model.DisplayDate(task.AssignDate),
				model.DisplayDate(task.LastDate),
				remainingText(task, now),
			)
		}
		fmt.Fprintln(w, t.Render())
	}
	fmt.Fprintf(w, "Total: %d  Completed: %d  Incomplete: %d\n",
		counts.Total, counts.Completed, counts.Incomplete)
}

func remainingText(t model.Task, now time.Time) string {
	if t.IsCompleted() {
		return "-"
	}
	days, ok := model.RemainingDays(t.LastDate, now)
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%d", days)
}

func addCmd(opts *rootOptions) *cobra.Command {
	var draft model.Task

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			created, err := s.svc.Create(cmd.Context(), draft)
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("%s (%s)", verr.Error(), verr.Detail())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", created.ID)
			return nil
		},
	}

	today := time.Now().Format(model.DateLayout)
	cmd.Flags().StringVarP(&draft.Name, "name", "n", "", "Task name")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&draft.AssignDate, "assign", today, "Assign date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&draft.LastDate, "last", "", "Last date (YYYY-MM-DD)")

	return cmd
}

// editFlags maps edit command flags to editor field names.
var editFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"name", editor.FieldName, "New name"},
	{"description", editor.FieldDescription, "New description"},
	{"status", editor.FieldStatus, `New status ("Completed" or "Not Completed")`},
	{"assign", editor.FieldAssignDate, "New assign date (YYYY-MM-DD)"},
	{"last", editor.FieldLastDate, "New last date (YYYY-MM-DD)"},
}

func editCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := map[string]string{}
			for _, f := range editFlags {
				if cmd.Flags().Changed(f.flag) {
					v, _ := cmd.Flags().GetString(f.flag)
					changes[f.field] = v
				}
			}
			if len(changes) == 0 {
				return fmt.Errorf("nothing to change")
			}

			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			saved, err := editTask(cmd.Context(), s.svc, args[0], changes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", saved.ID)
			return nil
		},
	}

	for _, f := range editFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}

	return cmd
}

func doneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task Completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			saved, err := editTask(cmd.Context(), s.svc, args[0], map[string]string{
				editor.FieldStatus: string(model.StatusCompleted),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", saved.ID, saved.Status)
			return nil
		},
	}
}

func toggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between Completed and Not Completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.Load(cmd.Context()); err != nil {
				return err
			}
			t, err := s.svc.ToggleStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", t.ID, t.Status)
			return nil
		},
	}
}

func deleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.Load(cmd.Context()); err != nil {
				return err
			}
			if err := s.svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// editTask loads the list, opens an edit session on id, applies changes
// and saves.
func editTask(ctx context.Context, svc *tasks.Service, id string, changes map[string]string) (model.Task, error) {
	if err := svc.Load(ctx); err != nil {
		return model.Task{}, err
	}
	if err := svc.BeginEdit(id); err != nil {
		return model.Task{}, err
	}
	for _, f := range editFlags {
		v, ok := changes[f.field]
		if !ok {
			continue
		}
		if err := svc.ChangeField(f.field, v); err != nil {
			svc.CancelEdit()
			return model.Task{}, err
		}
	}
	return svc.SaveEdit(ctx)
}
