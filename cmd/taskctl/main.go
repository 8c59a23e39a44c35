// Command taskctl is a CLI client for the taskhive API, plus offline admin
// commands that work on the store directly.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/taskhive/internal/client"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var (
	apiFlag     string
	timeoutFlag time.Duration
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "CLI client for the taskhive API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&apiFlag, "api", "a", envOr("TASKHIVE_API", "http://localhost:8080"), "taskhive base URL")
	root.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "taskctl %s (%s)\n", version, buildDate)
			},
		},
		registerCmd(), loginCmd(), logoutCmd(), whoamiCmd(),
		projectsCmd(), tasksCmd(), rewardsCmd(), notificationsCmd(),
		adminCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

// ---- utils ----

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func anonClient() *client.Client {
	return client.New(apiFlag, timeoutFlag)
}

// authedClient loads the saved token; commands fail early without one.
func authedClient() (*client.Client, error) {
	tf, err := loadToken()
	if err != nil {
		return nil, err
	}
	c := anonClient()
	c.SetToken(tf.AccessToken)
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func say(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), msg)
}

// describe renders API errors as the server's message.
func describe(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("error (%d): %s", apiErr.Status, apiErr.Msg)
	}
	return err.Error()
}
