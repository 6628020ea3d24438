package ml

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type ArtifactCache interface {
	EnsureDir() error
	Path(repoID, filename string) string
	Save(repoID, filename string, src io.Reader) (string, error)
	Delete(repoID, filename string) error
}

type artifactCache struct {
	cacheDir string
}

func NewArtifactCache(cacheDir string) ArtifactCache {
	return &artifactCache{
		cacheDir: cacheDir,
	}
}

func (c *artifactCache) EnsureDir() error {
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create model cache directory: %w", err)
	}

	return nil
}

// Path returns where an artifact of repoID is cached. "owner/name" repos map
// to an "owner--name" directory.
func (c *artifactCache) Path(repoID, filename string) string {
	repoDir := strings.ReplaceAll(repoID, "/", "--")
	return filepath.Join(c.cacheDir, repoDir, filepath.Base(filename))
}

// Save writes src to a temporary file next to the destination and renames it
// into place, so a partial download never shadows a good artifact.
func (c *artifactCache) Save(repoID, filename string, src io.Reader) (string, error) {
	if err := checkArtifactName(filename); err != nil {
		return "", err
	}

	dst := c.Path(repoID, filename)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("failed to create model cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save model artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("failed to move model artifact into cache: %w", err)
	}

	return dst, nil
}

func (c *artifactCache) Delete(repoID, filename string) error {
	if err := os.Remove(c.Path(repoID, filename)); err != nil {
		return fmt.Errorf("failed to delete cached model artifact: %w", err)
	}
	return nil
}

func checkArtifactName(filename string) error {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".json" {
		return fmt.Errorf("invalid model artifact extension: %q", ext)
	}
	return nil
}
