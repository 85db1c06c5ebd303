package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/ids"
	"beaconcms.org/internal/validate"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newUsersCreateCmd(a))
	return cmd
}

// newUsersCreateCmd bootstraps accounts without a session, e.g. the first super admin.
func newUsersCreateCmd(a *app) *cobra.Command {
	var email, name, role, password string
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create a user directly in the database.

Examples:
  cmsctl users create --email ops@example.com --name "Ops" --role super_admin --password '...'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = validate.NormalizeEmail(email)
			if err := validate.Var("email", email, "required,email,max=320"); err != nil {
				return err
			}
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			if !auth.ValidRole(role) {
				return fmt.Errorf("--role must be one of: %s, %s, %s, %s",
					auth.RoleSuperAdmin, auth.RoleAdmin, auth.RoleEditor, auth.RoleViewer)
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			u := cms.User{
				ID:           ids.New(),
				Email:        email,
				Name:         strings.TrimSpace(name),
				Role:         role,
				IsActive:     true,
				PasswordHash: hash,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := a.store.Users().Create(cmd.Context(), &u); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			audit.NewRecorder(a.store).Record(cmd.Context(), audit.Event{
				Action:     audit.ActionCreate,
				EntityType: cms.EntityUser,
				EntityID:   u.ID,
				NewValue:   map[string]string{"email": u.Email, "name": u.Name, "role": u.Role, "via": "cmsctl"},
			})
			fmt.Fprintf(a.stdout, "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "login email")
	c.Flags().StringVar(&name, "name", "", "display name")
	c.Flags().StringVar(&role, "role", auth.RoleViewer, "role: super_admin, admin, editor or viewer")
	c.Flags().StringVar(&password, "password", "", "initial password (min 8 characters)")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
