package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/taskhive/internal/convert"
)

func tasksCmd() *cobra.Command {
	tasks := &cobra.Command{Use: "tasks", Short: "Task operations"}

	var project string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks assigned to you, or every task of --project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			var views []convert.TaskView
			if project != "" {
				views, err = c.ProjectTasks(cmd.Context(), project)
			} else {
				views, err = c.MyTasks(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
	list.Flags().StringVarP(&project, "project", "P", "", "project id")
	tasks.AddCommand(list)

	tasks.AddCommand(createTaskCmd())

	tasks.AddCommand(&cobra.Command{
		Use:   "complete TASK_ID",
		Short: "Mark your task complete and collect a reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			res, err := c.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			say(cmd, res.Msg)
			if res.Reward != nil {
				return printJSON(cmd.OutOrStdout(), res.Reward)
			}
			return nil
		},
	})

	tasks.AddCommand(&cobra.Command{
		Use:   "incomplete TASK_ID",
		Short: "Reopen your task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			msg, err := c.Incomplete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			say(cmd, msg)
			return nil
		},
	})

	tasks.AddCommand(&cobra.Command{
		Use:   "depend DEPENDENT_ID INDEPENDENT_ID",
		Short: "Make a task wait for another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			msg, err := c.AddDependency(cmd.Context(), args[1], args[0])
			if err != nil {
				return err
			}
			say(cmd, msg)
			return nil
		},
	})

	return tasks
}

func createTaskCmd() *cobra.Command {
	var (
		in  convert.NewTask
		due string
	)
	cmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create a task in a project you manage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			if due != "" {
				at, err := parseDue(due, time.Now())
				if err != nil {
					return err
				}
				in.Deadline = &at
			}
			c, err := authedClient()
			if err != nil {
				return err
			}
			res, err := c.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			say(cmd, res.Msg)
			return printJSON(cmd.OutOrStdout(), res.Task)
		},
	}
	cmd.Flags().StringVarP(&in.Project, "project", "P", "", "project id (required)")
	cmd.Flags().StringVarP(&in.Notes, "notes", "n", "", "task notes")
	cmd.Flags().StringSliceVarP(&in.Links, "link", "l", nil, "related link, repeatable")
	cmd.Flags().StringVar(&in.Assignee, "assignee", "", "assignee username")
	cmd.Flags().StringVar(&due, "due", "", "deadline: RFC3339 time or a duration from now, e.g. 48h")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

// parseDue accepts an RFC3339 timestamp or a Go duration relative to now.
func parseDue(v string, now time.Time) (time.Time, error) {
	if at, err := time.Parse(time.RFC3339, v); err == nil {
		return at, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad --due %q: want RFC3339 or a duration", v)
	}
	return now.Add(d), nil
}
