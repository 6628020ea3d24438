package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the attrition API. Values come from the
// environment (optionally seeded from .env), with an optional YAML file named
// by CONFIG_FILE underneath. Secrets are only read from the environment.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Model    ModelConfig    `yaml:"model"`
}

type ServerConfig struct {
	Port           string        `yaml:"port" env:"PORT" env-default:"8000"`
	Env            string        `yaml:"env" env:"ENV" env-default:"development"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"30s"`
	APIKey         string        `yaml:"-" env:"API_KEY"`
	CORSOrigins    string        `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"*"`
}

type APIConfig struct {
	Title       string `yaml:"title" env:"API_TITLE" env-default:"Futurisys Attrition API"`
	Description string `yaml:"description" env:"API_DESCRIPTION" env-default:"Predicts the risk that an employee leaves the company"`
	Version     string `yaml:"version" env:"API_VERSION" env-default:"1.0.0"`
}

type DatabaseConfig struct {
	URL      string `yaml:"-" env:"DATABASE_URL"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-default:"postgres"`
	DBName   string `yaml:"name" env:"DB_NAME" env-default:"attrition"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
}

type ModelConfig struct {
	Path     string `yaml:"path" env:"MODEL_PATH" env-default:"model/attrition_forest.json"`
	RepoID   string `yaml:"repo_id" env:"MODEL_REPO_ID"`
	Filename string `yaml:"filename" env:"MODEL_FILENAME" env-default:"attrition_forest.json"`
	Revision string `yaml:"revision" env:"MODEL_REVISION" env-default:"main"`
	HubURL   string `yaml:"hub_url" env:"MODEL_HUB_URL" env-default:"https://huggingface.co"`
	Token    string `yaml:"-" env:"HF_TOKEN"`
	CacheDir string `yaml:"cache_dir" env:"MODEL_CACHE_DIR" env-default:"./model_cache"`

	DownloadRetries      int           `yaml:"download_retries" env:"MODEL_DOWNLOAD_RETRIES" env-default:"3"`
	DownloadInitialDelay time.Duration `yaml:"download_initial_delay" env:"MODEL_DOWNLOAD_INITIAL_DELAY" env-default:"1s"`
	DownloadTimeout      time.Duration `yaml:"download_timeout" env:"MODEL_DOWNLOAD_TIMEOUT" env-default:"60s"`
}

// Load reads .env when present, then the optional CONFIG_FILE, then the
// environment, which always wins.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	} else if err != nil {
		log.Println("No .env file found. Using environment and defaults.")
	}

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	if c.Model.DownloadRetries < 0 {
		return fmt.Errorf("MODEL_DOWNLOAD_RETRIES must not be negative")
	}
	if c.Model.Path == "" && c.Model.RepoID == "" {
		return fmt.Errorf("one of MODEL_PATH or MODEL_REPO_ID is required")
	}
	return nil
}

// GetDatabaseDSN prefers DATABASE_URL and otherwise assembles a key/value DSN.
func (c *Config) GetDatabaseDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// IsDevelopment reports whether verbose logging is wanted.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Version returns the API version with a leading "v".
func (c *Config) Version() string {
	v := strings.TrimSpace(c.API.Version)
	if v == "" {
		v = "1.0.0"
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// AllowedOrigins returns the CORS origins in the form fiber's cors middleware expects.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.Server.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}

// HubEndpoint returns the model hub base URL without a trailing slash.
func (c *Config) HubEndpoint() (string, error) {
	u, err := url.Parse(strings.TrimRight(c.Model.HubURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid MODEL_HUB_URL %q", c.Model.HubURL)
	}
	return u.String(), nil
}
