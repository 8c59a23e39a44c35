package main

import (
	"github.com/spf13/cobra"
)

func rewardsCmd() *cobra.Command {
	var project, task string
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "List your rewards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			list, err := c.Rewards(cmd.Context(), project, task)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "P", "", "only rewards from this project")
	cmd.Flags().StringVarP(&task, "task", "T", "", "only the reward for this task")
	return cmd
}

func notificationsCmd() *cobra.Command {
	n := &cobra.Command{
		Use:   "notifications",
		Short: "List your notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			list, err := c.Notifications(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	n.AddCommand(&cobra.Command{
		Use:   "dismiss NOTIFICATION_ID",
		Short: "Delete one of your notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			msg, err := c.Dismiss(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			say(cmd, msg)
			return nil
		},
	})
	return n
}
