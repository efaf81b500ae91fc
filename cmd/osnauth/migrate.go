package main

import (
	"github.com/spf13/cobra"
)

func (a *app) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users table if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}

			cmd.Printf("Applying schema to %s store...\n", cfg.Store.Driver)

			_, closeStore, err := openStore(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			closeStore()

			cmd.Println("Schema is up to date.")
			return nil
		},
	}
}
