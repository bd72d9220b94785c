package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
)

// legacy v3 api keys are exactly 32 alphanumeric characters; anything else
// configured in TMDB_READACCESS_API_KEY is treated as a v4 bearer token
var legacyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9]{32}$`)

// Config holds all application configuration
type Config struct {
	// TMDB upstream
	TMDBBaseURL      string
	TMDBCredential   string // raw value, classified by Credentials()
	TMDBImageBaseURL string
	LogTMDBRequests  bool

	// Catalog behaviour
	ClearListOnError bool // blank the grid before a fetch (original behaviour) or keep last good page

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/filmfinder.db

	// Logging
	LogLevel string
}

// Credentials classifies the configured credential. Exactly one of the two
// return values is non-empty when a credential is configured.
func (c *Config) Credentials() (bearerToken, apiKey string) {
	if c.TMDBCredential == "" {
		return "", ""
	}
	if legacyKeyPattern.MatchString(c.TMDBCredential) {
		return "", c.TMDBCredential
	}
	return c.TMDBCredential, ""
}

// HasCredentials reports whether any upstream credential is configured.
// Absence is not a startup failure; the proxy surfaces it per request.
func (c *Config) HasCredentials() bool {
	return c.TMDBCredential != ""
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TMDB_API_BASE_URL", "http://api.themoviedb.org/3")
	viper.SetDefault("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500")
	viper.SetDefault("TMDB_LOG_REQUESTS", false)
	viper.SetDefault("CLEAR_LIST_ON_ERROR", true)

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "filmfinder")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		TMDBBaseURL:      viper.GetString("TMDB_API_BASE_URL"),
		TMDBCredential:   viper.GetString("TMDB_READACCESS_API_KEY"),
		TMDBImageBaseURL: viper.GetString("TMDB_IMAGE_BASE_URL"),
		LogTMDBRequests:  viper.GetBool("TMDB_LOG_REQUESTS"),

		ClearListOnError: viper.GetBool("CLEAR_LIST_ON_ERROR"),

		ServerPort: viper.GetString("SERVER_PORT"),

		DatabaseFile: filepath.Join(configDir, "filmfinder.db"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	return config, nil
}
