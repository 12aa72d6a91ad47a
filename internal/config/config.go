// ABOUTME: kcal configuration management with backend selection and API credentials.
// ABOUTME: Handles the config file, .env loading, base URL resolution, and the storage factory.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/kcal/internal/api"
	"github.com/harperreed/kcal/internal/storage"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// EnvAPIBaseURL overrides the configured API base URL.
const EnvAPIBaseURL = "KCAL_API_BASE_URL"

// Config stores kcal configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "markdown".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts kcal.db here. Markdown puts entries/ and chat/ folders here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/kcal.
	DataDir string `json:"data_dir,omitempty"`

	// APIBaseURL is the remote service address.
	APIBaseURL string `json:"api_base_url,omitempty"`

	Email        string `json:"email,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetAPIBaseURL resolves the API base URL: environment, then config, then default.
func (c *Config) GetAPIBaseURL() string {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		return v
	}
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return api.DefaultBaseURL
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case "sqlite":
		dbPath := filepath.Join(dataDir, "kcal.db")
		return storage.Open(dbPath)
	case "markdown":
		return storage.NewMarkdownStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// NewAPIClient builds a client for the resolved base URL carrying any saved tokens.
// The analyze limiter mirrors the service's 5 requests per minute; it only
// delays callers that reuse one client for many requests.
func (c *Config) NewAPIClient(logger *log.Logger) *api.Client {
	return api.NewClient(c.GetAPIBaseURL(),
		api.WithLogger(logger),
		api.WithToken(c.AccessToken, c.RefreshToken),
		api.WithAnalyzeLimit(rate.Limit(5.0/60.0), 5),
	)
}

// SetToken records credentials returned by a login or refresh.
func (c *Config) SetToken(email string, tok api.Token) {
	if email != "" {
		c.Email = email
	}
	c.AccessToken = tok.AccessToken
	c.RefreshToken = tok.RefreshToken
	c.TokenType = tok.TokenType
}

// ClearToken forgets saved credentials.
func (c *Config) ClearToken() {
	c.Email = ""
	c.AccessToken = ""
	c.RefreshToken = ""
	c.TokenType = ""
}

// LoadEnv loads variables from .env in the working directory.
// A missing file is not an error; variables already set are kept.
func LoadEnv() error {
	return LoadEnvFile(".env")
}

// LoadEnvFile loads variables from path without overriding existing ones.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "kcal", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
