package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func seedSuperAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-superadmin",
		Short: "Create or promote the configured superadmin account",
		Long: "Ensures SUPERADMIN_USERNAME exists with the SUPERADMIN role. An existing " +
			"account is promoted and reactivated and keeps its password.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()
			if a.db == nil {
				return errors.New("DATABASE_URL is not set; an in-memory superadmin would not outlive this command")
			}
			return a.seedSuperAdmin(ctx)
		},
	}
}
