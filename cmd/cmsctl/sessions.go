package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"beaconcms.org/internal/auth"
)

func newSessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := auth.NewSessions(a.store, nil, a.cfg.Session.TTL)
			if err != nil {
				return err
			}
			n, err := sessions.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "pruned %d expired sessions\n", n)
			return nil
		},
	})
	return cmd
}
