package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anesteasy/api/internal/config"
	"github.com/anesteasy/api/internal/migrate"
	"github.com/anesteasy/api/internal/repository/postgres"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the AnestEasy database schema",
	}
	rootCmd.PersistentFlags().String("dir", "./migrations", "Path to migrations directory")
	rootCmd.AddCommand(upCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newMigrator(cmd *cobra.Command) (*migrate.Migrator, func(), error) {
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return migrate.NewMigrator(db, dir), func() { db.Close() }, nil
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeDB, err := newMigrator(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			applied, err := m.Up(cmd.Context())
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", len(applied))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeDB, err := newMigrator(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			statuses, err := m.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-40s %-10s %s\n", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(out, "%-40s %-10s %s\n", s.Name, status, appliedAt)
			}
			return nil
		},
	}
}
