package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"beaconcms.org/internal/migrate"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
		Long: `Apply or roll back the SQL migrations embedded in the binary.

Examples:
  cmsctl migrate up
  cmsctl migrate seed
  cmsctl migrate status`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.migrator().Up(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "migrations applied")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.migrator().Down(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "last migration rolled back")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := a.migrator()
			applied, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			pending, err := m.Pending(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Fprintf(a.stdout, "applied  %s\n", name)
			}
			for _, name := range pending {
				fmt.Fprintf(a.stdout, "pending  %s\n", name)
			}
			if len(applied)+len(pending) == 0 {
				fmt.Fprintln(a.stdout, "no migrations found")
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Apply seed data (roles, permissions, default settings)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.migrator().Seed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "seeds applied")
			return nil
		},
	})
	return cmd
}

func (a *app) migrator() *migrate.Manager {
	return migrate.NewManager(a.store.DB(), nil)
}
