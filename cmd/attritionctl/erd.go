package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"futurisys/attrition-api/internal/services"
)

var erdCmd = &cobra.Command{
	Use:   "erd",
	Short: "Print the entity relationship diagram of the database as markdown",
	RunE:  runERD,
}

var erdOutputFile string

func init() {
	erdCmd.Flags().StringVarP(&erdOutputFile, "out", "o", "", "Write the diagram to this file instead of stdout")
	rootCmd.AddCommand(erdCmd)
}

func runERD(cmd *cobra.Command, _ []string) error {
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

	md, err := services.NewERDService(services.NewGormInspector(db)).Generate(cmd.Context())
	if err != nil {
		return err
	}

	if erdOutputFile == "" {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	if err := os.WriteFile(erdOutputFile, []byte(md), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", erdOutputFile, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✅ Diagram written to %s\n", erdOutputFile)
	return nil
}
