package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"presale/internal/platform/config"
)

// main wires the command tree. Business logic lives in the internal service
// packages; commands only assemble dependencies and manage lifecycles.
func main() {
	var envFile string

	root := &cobra.Command{
		Use:           "presale",
		Short:         "Presale condo assignment marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedSuperAdminCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
