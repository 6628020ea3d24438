package ml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultHubEndpoint is the public Hugging Face Hub.
const DefaultHubEndpoint = "https://huggingface.co"

// Loader is one strategy for obtaining the classifier.
type Loader interface {
	Name() string
	Load(ctx context.Context) (Classifier, error)
}

// Load tries each loader in order and returns the first classifier that
// loads. When every loader fails the error wraps ErrModelUnavailable and the
// individual failures.
func Load(ctx context.Context, logger *zap.Logger, loaders ...Loader) (Classifier, error) {
	if len(loaders) == 0 {
		return nil, fmt.Errorf("%w: no model loaders configured", ErrModelUnavailable)
	}

	var errs []error
	for _, loader := range loaders {
		classifier, err := loader.Load(ctx)
		if err == nil {
			logger.Info("model loaded", zap.String("source", loader.Name()))
			return classifier, nil
		}

		logger.Warn("model loader failed, trying next source",
			zap.String("source", loader.Name()),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", loader.Name(), err))

		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, errors.Join(errs...))
}

// LocalLoader reads a forest artifact from the local filesystem.
type LocalLoader struct {
	Path string
}

func (l LocalLoader) Name() string {
	return "local:" + l.Path
}

func (l LocalLoader) Load(ctx context.Context) (Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Path == "" {
		return nil, errors.New("no model path configured")
	}

	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	return ReadForest(f)
}

// HubLoader downloads a forest artifact from a Hugging Face style model
// repository into the artifact cache and loads it from there. A previously
// cached copy is used without downloading when it still loads.
type HubLoader struct {
	Endpoint string
	RepoID   string
	Filename string
	Revision string
	Token    string

	Cache  ArtifactCache
	Client *http.Client

	MaxRetries      int
	InitialInterval time.Duration

	Logger *zap.Logger
}

func (h *HubLoader) Name() string {
	return "hub:" + h.RepoID + "/" + h.Filename
}

func (h *HubLoader) Load(ctx context.Context) (Classifier, error) {
	if h.RepoID == "" || h.Filename == "" {
		return nil, errors.New("no model repository configured")
	}
	if err := h.Cache.EnsureDir(); err != nil {
		return nil, err
	}

	cached := LocalLoader{Path: h.Cache.Path(h.RepoID, h.Filename)}
	if _, err := os.Stat(cached.Path); err == nil {
		classifier, err := cached.Load(ctx)
		if err == nil {
			h.logger().Info("using cached model artifact", zap.String("path", cached.Path))
			return classifier, nil
		}
		h.logger().Warn("cached model artifact is unusable, downloading again",
			zap.String("path", cached.Path),
			zap.Error(err),
		)
	}

	path, err := h.Download(ctx)
	if err != nil {
		return nil, err
	}

	classifier, err := LocalLoader{Path: path}.Load(ctx)
	if err != nil {
		if delErr := h.Cache.Delete(h.RepoID, h.Filename); delErr != nil {
			h.logger().Warn("failed to evict corrupt model artifact", zap.Error(delErr))
		}
		return nil, fmt.Errorf("downloaded model artifact is unusable: %w", err)
	}

	return classifier, nil
}

// Download fetches the artifact into the cache and returns its path.
func (h *HubLoader) Download(ctx context.Context) (string, error) {
	if err := checkArtifactName(h.Filename); err != nil {
		return "", err
	}
	fileURL := h.fileURL()

	policy := backoff.NewExponentialBackOff()
	if h.InitialInterval > 0 {
		policy.InitialInterval = h.InitialInterval
	}
	retries := h.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var path string
	attempt := 0
	operation := func() error {
		attempt++
		p, err := h.fetch(ctx, fileURL)
		if err != nil {
			h.logger().Warn("model download attempt failed",
				zap.Int("attempt", attempt),
				zap.String("url", fileURL),
				zap.Error(err),
			)
			return err
		}
		path = p
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx))
	if err != nil {
		return "", fmt.Errorf("failed to download model after %d attempts: %w", attempt, err)
	}

	h.logger().Info("model artifact downloaded", zap.String("url", fileURL), zap.String("path", path))
	return path, nil
}

func (h *HubLoader) fetch(ctx context.Context, fileURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to build download request: %w", err))
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := h.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", fmt.Errorf("model repository returned %s", resp.Status)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", backoff.Permanent(fmt.Errorf("model repository returned %s", resp.Status))
	}

	return h.Cache.Save(h.RepoID, h.Filename, resp.Body)
}

func (h *HubLoader) fileURL() string {
	endpoint := strings.TrimRight(h.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultHubEndpoint
	}
	revision := h.Revision
	if revision == "" {
		revision = "main"
	}

	segments := strings.Split(h.Filename, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return fmt.Sprintf("%s/%s/resolve/%s/%s", endpoint, h.RepoID, url.PathEscape(revision), strings.Join(segments, "/"))
}

func (h *HubLoader) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}

func (h *HubLoader) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.NewNop()
}
