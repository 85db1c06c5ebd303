package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"beaconcms.org/internal/auth"
)

func newRolesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect and sync the role matrix",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Write the built-in role to permission matrix to the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.SyncRoles(cmd.Context()); err != nil {
				return err
			}
			for _, role := range auth.Roles() {
				fmt.Fprintf(a.stdout, "%-12s %d permissions\n", role.Name, len(role.Permissions))
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show ROLE",
		Short: "Print the permissions stored for a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perms, err := a.store.RolePermissions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, strings.Join(perms, "\n"))
			return nil
		},
	})
	return cmd
}
