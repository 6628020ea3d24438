package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"futurisys/attrition-api/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the prediction tables",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, closeDB, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := config.Migrate(db, logger); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ Tables are up to date")
	return nil
}
