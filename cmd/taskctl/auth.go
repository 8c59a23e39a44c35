package main

import (
	"github.com/spf13/cobra"
)

func credentialFlags(cmd *cobra.Command, user, pass *string) {
	cmd.Flags().StringVarP(user, "username", "u", "", "username (required)")
	cmd.Flags().StringVarP(pass, "password", "p", "", "password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
}

func registerCmd() *cobra.Command {
	var user, pass string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := anonClient().Register(cmd.Context(), user, pass)
			if err != nil {
				return err
			}
			say(cmd, res.Msg)
			return nil
		},
	}
	credentialFlags(cmd, &user, &pass)
	return cmd
}

func loginCmd() *cobra.Command {
	var user, pass string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := anonClient().Login(cmd.Context(), user, pass)
			if err != nil {
				return err
			}
			if err := saveToken(tokenFile{AccessToken: res.Token, Username: user, ExpiresAt: res.ExpiresAt}); err != nil {
				return err
			}
			say(cmd, res.Msg)
			return nil
		},
	}
	credentialFlags(cmd, &user, &pass)
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			msg, err := c.Logout(cmd.Context())
			if err != nil {
				return err
			}
			if err := clearToken(); err != nil {
				return err
			}
			say(cmd, msg)
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			me, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), me)
		},
	}
}
