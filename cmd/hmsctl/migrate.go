package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xela07ax/hospital-console/migrations"
)

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrations.New(e.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer m.Close()

			changed, err := m.Up()
			if err != nil {
				return err
			}
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "no change, schema version %d\n", version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated to version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrations.New(e.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Down(); err != nil {
				return err
			}
			version, _, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back to version %d\n", version)
			return nil
		},
	}

	cmd.AddCommand(up, down)
	return cmd
}
