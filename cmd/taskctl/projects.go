package main

import (
	"github.com/spf13/cobra"
)

func projectsCmd() *cobra.Command {
	projects := &cobra.Command{Use: "projects", Short: "Project operations"}

	projects.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects you belong to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			list, err := c.MyProjects(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	})

	projects.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a project you manage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			res, err := c.CreateProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			say(cmd, res.Msg)
			return printJSON(cmd.OutOrStdout(), res.Project)
		},
	})

	projects.AddCommand(&cobra.Command{
		Use:   "delete PROJECT_ID",
		Short: "Delete a project and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			msg, err := c.DeleteProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			say(cmd, msg)
			return nil
		},
	})

	projects.AddCommand(&cobra.Command{
		Use:   "add-member PROJECT_ID USERNAME",
		Short: "Add a user to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			msg, err := c.AddMember(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			say(cmd, msg)
			return nil
		},
	})

	projects.AddCommand(&cobra.Command{
		Use:   "notify PROJECT_ID MESSAGE",
		Short: "Send a message to every member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			msg, err := c.NotifyTeam(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			say(cmd, msg)
			return nil
		},
	})

	return projects
}
