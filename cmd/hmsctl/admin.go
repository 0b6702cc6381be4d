package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xela07ax/hospital-console/internal/console/service"
	"github.com/xela07ax/hospital-console/internal/repository/postgres"
)

func newCreateAdminCmd(e *env) *cobra.Command {
	var (
		email    string
		password string
		role     string
	)
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create or update a console user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			pool, err := postgres.OpenPool(cmd.Context(), e.cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			u, err := service.CreateAdmin(cmd.Context(), postgres.NewRepo(pool), email, password, role, e.cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s (%s) saved, id %s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&role, "role", "admin", "admin or staff")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
