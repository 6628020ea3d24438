package config

import (
	"net/http"

	"go.uber.org/zap"

	"futurisys/attrition-api/internal/ml"
)

// NewHubLoader builds the model repository loader from the Model section.
func NewHubLoader(cfg *Config, log *zap.Logger) (*ml.HubLoader, error) {
	endpoint, err := cfg.HubEndpoint()
	if err != nil {
		return nil, err
	}
	return &ml.HubLoader{
		Endpoint:        endpoint,
		RepoID:          cfg.Model.RepoID,
		Filename:        cfg.Model.Filename,
		Revision:        cfg.Model.Revision,
		Token:           cfg.Model.Token,
		Cache:           ml.NewArtifactCache(cfg.Model.CacheDir),
		Client:          &http.Client{Timeout: cfg.Model.DownloadTimeout},
		MaxRetries:      cfg.Model.DownloadRetries,
		InitialInterval: cfg.Model.DownloadInitialDelay,
		Logger:          log.Named("hub"),
	}, nil
}

// ModelLoaders returns the local artifact loader followed by the hub loader
// when a repository is configured.
func ModelLoaders(cfg *Config, log *zap.Logger) ([]ml.Loader, error) {
	var loaders []ml.Loader
	if cfg.Model.Path != "" {
		loaders = append(loaders, ml.LocalLoader{Path: cfg.Model.Path})
	}
	if cfg.Model.RepoID != "" {
		hub, err := NewHubLoader(cfg, log)
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, hub)
	}
	return loaders, nil
}
