package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"todo/pkg/message"
	"todo/pkg/savedstate"
	"todo/pkg/statistics"
	"todo/pkg/task"
	"todo/pkg/taskdetail"
	"todo/pkg/taskedit"
	"todo/pkg/tasklist"
)

func listCmd(withApp appRunner) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks using the saved filter",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, _ []string) error {
			state := a.State
			if cmd.Flags().Changed("filter") {
				f, err := task.ParseFilter(filter)
				if err != nil {
					return err
				}
				// a one-off filter must not replace the saved one
				mem := savedstate.NewMemory()
				_ = mem.Set(tasklist.FilterKey, string(f))
				state = mem
			}

			vm := tasklist.New(ctx, a.Repo, state)
			defer vm.Close()
			states, cancel := vm.Subscribe()
			defer cancel()
			s, err := awaitState(ctx, states, func(s tasklist.UIState) bool { return !s.IsLoading })
			if err != nil {
				return err
			}
			if s.UserMessage == message.LoadingTasksError {
				return errors.New(s.UserMessage.String())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, BoldCyan(s.Filtering.Label.String()))
			if s.Empty {
				fmt.Fprintln(out, Dim(s.Filtering.NoTasksLabel.String()))
				return nil
			}
			for _, t := range s.Items {
				fmt.Fprintf(out, "%s %s  %s\n", checkbox(t), titleFor(t), Dim(t.ID))
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Show all, active or completed tasks without saving the choice")
	return cmd
}

func filterCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:       "filter <all|active|completed>",
		Short:     "Select and save the list filter",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(task.FilterAll), string(task.FilterActive), string(task.FilterCompleted)},
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *App, args []string) error {
			f, err := task.ParseFilter(args[0])
			if err != nil {
				return err
			}
			if err := a.State.Set(tasklist.FilterKey, string(f)); err != nil {
				return fmt.Errorf("save filter: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Showing %s\n", Bold(tasklist.InfoFor(f).Label.String()))
			return nil
		}),
	}
}

func addCmd(withApp appRunner) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, _ []string) error {
			vm := taskedit.New(ctx, a.Repo, "")
			defer vm.Close()
			vm.OnTitleChanged(title)
			vm.OnDescriptionChanged(description)
			return saveTask(ctx, cmd, vm, message.TaskAdded)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	return cmd
}

func editCmd(withApp appRunner) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, args []string) error {
			vm := taskedit.New(ctx, a.Repo, args[0])
			defer vm.Close()
			states, cancel := vm.Subscribe()
			s, err := awaitState(ctx, states, func(s taskedit.UIState) bool { return !s.IsLoading })
			cancel()
			if err != nil {
				return err
			}
			if s.UserMessage != message.None {
				return errors.New(s.UserMessage.String())
			}
			if cmd.Flags().Changed("title") {
				vm.OnTitleChanged(title)
			}
			if cmd.Flags().Changed("description") {
				vm.OnDescriptionChanged(description)
			}
			return saveTask(ctx, cmd, vm, message.TaskSaved)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func saveTask(ctx context.Context, cmd *cobra.Command, vm *taskedit.ViewModel, done message.Code) error {
	if err := vm.SaveTask(ctx); err != nil {
		return err
	}
	s := vm.State()
	if !s.IsTaskSaved {
		return errors.New(s.UserMessage.String())
	}
	fmt.Fprintln(cmd.OutOrStdout(), BoldGreen(done.String()))
	return nil
}

// openDetail starts a detail screen for id and waits for the task to load.
func openDetail(ctx context.Context, a *App, id string) (*taskdetail.ViewModel, taskdetail.UIState, error) {
	vm := taskdetail.New(ctx, a.Repo, id)
	states, cancel := vm.Subscribe()
	defer cancel()
	s, err := awaitState(ctx, states, func(s taskdetail.UIState) bool { return !s.IsLoading })
	if err == nil && s.Task == nil {
		err = errors.New(s.UserMessage.String())
	}
	if err != nil {
		vm.Close()
		return nil, s, err
	}
	return vm, s, nil
}

func showCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, args []string) error {
			vm, s, err := openDetail(ctx, a, args[0])
			if err != nil {
				return err
			}
			defer vm.Close()

			t := s.Task
			status := Yellow("active")
			if t.Completed {
				status = Green("completed")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", checkbox(*t), Bold(t.Title))
			if t.Description != "" {
				fmt.Fprintln(out, t.Description)
			}
			fmt.Fprintf(out, "%s  %s\n", status, Dim(t.ID))
			return nil
		}),
	}
}

func completeCmd(withApp appRunner, completed bool) *cobra.Command {
	use, short := "activate <id>", "Mark a task active"
	if completed {
		use, short = "complete <id>", "Mark a task completed"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, args []string) error {
			vm, _, err := openDetail(ctx, a, args[0])
			if err != nil {
				return err
			}
			defer vm.Close()
			if err := vm.OnTaskChecked(ctx, completed); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Green(vm.State().UserMessage.String()))
			return nil
		}),
	}
}

func deleteCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, args []string) error {
			vm, _, err := openDetail(ctx, a, args[0])
			if err != nil {
				return err
			}
			defer vm.Close()
			if err := vm.DeleteTask(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Green(message.TaskDeleted.String()))
			return nil
		}),
	}
}

func clearCompletedCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed task",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, _ []string) error {
			n, err := a.Repo.ClearCompleted(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", Green(message.CompletedTasksCleared.String()), Dim(fmt.Sprintf("(%d)", n)))
			return nil
		}),
	}
}

func deleteAllCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, _ []string) error {
			if err := a.Repo.DeleteAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Red("All tasks deleted"))
			return nil
		}),
	}
}

func statsCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the share of active and completed tasks",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, _ []string) error {
			vm := statistics.New(ctx, a.Repo)
			defer vm.Close()
			states, cancel := vm.Subscribe()
			defer cancel()
			s, err := awaitState(ctx, states, func(s statistics.UIState) bool { return s.Status != statistics.StatusLoading })
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch s.Status {
			case statistics.StatusError:
				return errors.New(s.UserMessage.String())
			case statistics.StatusEmpty:
				fmt.Fprintln(out, Dim(message.NoTasksAll.String()))
			default:
				fmt.Fprintf(out, "%s %.1f%%\n", Bold("Active tasks:   "), s.Data.ActivePercent)
				fmt.Fprintf(out, "%s %.1f%%\n", Bold("Completed tasks:"), s.Data.CompletedPercent)
			}
			return nil
		}),
	}
}

func exportCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as YAML",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *App, _ []string) error {
			tasks, err := a.Repo.Tasks(ctx)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(tasks); err != nil {
				return fmt.Errorf("encode tasks: %w", err)
			}
			return enc.Close()
		}),
	}
}
