package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"futurisys/attrition-api/internal/config"
)

var fetchModelCmd = &cobra.Command{
	Use:   "fetch-model",
	Short: "Download the model artifact from the model repository into the cache",
	Long:  "Download MODEL_FILENAME from MODEL_REPO_ID at MODEL_REVISION into MODEL_CACHE_DIR and check that it loads.",
	RunE:  runFetchModel,
}

var fetchModelForce bool

func init() {
	fetchModelCmd.Flags().BoolVar(&fetchModelForce, "force", false, "Discard the cached artifact first")
	rootCmd.AddCommand(fetchModelCmd)
}

func runFetchModel(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Model.RepoID == "" {
		return errors.New("MODEL_REPO_ID is not set")
	}
	hub, err := config.NewHubLoader(cfg, logger)
	if err != nil {
		return err
	}

	if fetchModelForce {
		if _, err := os.Stat(hub.Cache.Path(hub.RepoID, hub.Filename)); err == nil {
			if err := hub.Cache.Delete(hub.RepoID, hub.Filename); err != nil {
				return err
			}
		}
	}

	if _, err := hub.Load(cmd.Context()); err != nil {
		return fmt.Errorf("failed to fetch model: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hub.Cache.Path(hub.RepoID, hub.Filename))
	return nil
}
