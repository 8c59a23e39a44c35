package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/service"
	"github.com/and161185/taskhive/internal/storage"
)

func adminCmd() *cobra.Command {
	var driver, dsn string
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Operate on the store directly (no server needed)",
	}
	admin.PersistentFlags().StringVar(&driver, "driver", envOr("TASKHIVE_DB_DRIVER", "sqlite"), "storage driver: sqlite or postgres")
	admin.PersistentFlags().StringVar(&dsn, "dsn", envOr("TASKHIVE_DSN", "file:taskhive.db"), "storage DSN")

	open := func(cmd *cobra.Command, skipMigrations bool) (*storage.Backend, *zap.Logger, error) {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, err
		}
		b, err := storage.Open(cmd.Context(), driver, dsn, storage.Options{SkipMigrations: skipMigrations, Logger: log})
		if err != nil {
			return nil, nil, err
		}
		return b, log, nil
	}

	admin.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, _, err := open(cmd, false)
			if err != nil {
				return err
			}
			b.Close()
			say(cmd, "ok")
			return nil
		},
	})

	integrity := &cobra.Command{Use: "integrity", Short: "Find or remove orphaned records"}
	integrity.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Count orphaned records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, log, err := open(cmd, true)
			if err != nil {
				return err
			}
			defer b.Close()
			rep, err := service.NewIntegrityService(b.Repos.Integrity, log).Check(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	})
	integrity.AddCommand(&cobra.Command{
		Use:   "repair",
		Short: "Delete orphaned records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, log, err := open(cmd, true)
			if err != nil {
				return err
			}
			defer b.Close()
			rep, err := service.NewIntegrityService(b.Repos.Integrity, log).Repair(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	})
	admin.AddCommand(integrity)
	return admin
}
