package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/vire-folio/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	Storage     StorageConfig        `toml:"storage"`
	Logging     common.LoggingConfig `toml:"logging"`
	Import      ImportConfig         `toml:"import"`
	Assist      AssistConfig         `toml:"assist"`
	Cache       CacheConfig          `toml:"cache"`
	Display     DisplayConfig        `toml:"display"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string       `toml:"backend"` // "badger", "sqlite", "memory"
	Badger  BadgerConfig `toml:"badger"`
	SQLite  SQLiteConfig `toml:"sqlite"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// SQLiteConfig contains SQLite-specific settings.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// ImportConfig controls how uploaded files are parsed.
type ImportConfig struct {
	Parser      string `toml:"parser"` // "rules", "assist", "auto"
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// AssistConfig configures the LLM-assisted parser.
type AssistConfig struct {
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	SampleRows int    `toml:"sample_rows"` // lines per assistant request
}

// CacheConfig bounds the derived-view cache.
type CacheConfig struct {
	TTL        string `toml:"ttl"`
	MaxEntries int    `toml:"max_entries"`
}

// TTLDuration parses TTL, falling back to five minutes.
func (c CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	Currency string `toml:"currency"`
}

// IsProduction reports whether the environment is "prod" or "production".
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "prod" || env == "production"
}

// MaxUploadBytes is the import size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Import.MaxUploadMB) << 20
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FOLIO_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("FOLIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if backend := os.Getenv("FOLIO_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if path := os.Getenv("FOLIO_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if path := os.Getenv("FOLIO_SQLITE_PATH"); path != "" {
		config.Storage.SQLite.Path = path
	}
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if outputs := os.Getenv("FOLIO_LOG_OUTPUTS"); outputs != "" {
		config.Logging.Outputs = splitList(outputs)
	}
	if parser := os.Getenv("FOLIO_IMPORT_PARSER"); parser != "" {
		config.Import.Parser = parser
	}
	if key := os.Getenv("FOLIO_ASSIST_API_KEY"); key != "" {
		config.Assist.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.Assist.APIKey == "" {
		config.Assist.APIKey = key
	}
	if model := os.Getenv("FOLIO_ASSIST_MODEL"); model != "" {
		config.Assist.Model = model
	}
	if currency := os.Getenv("FOLIO_DISPLAY_CURRENCY"); currency != "" {
		config.Display.Currency = currency
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate returns every problem found in the configuration.
func (c *Config) Validate() []string {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}

	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Badger.Path == "" {
			problems = append(problems, "storage.badger.path is required for the badger backend")
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			problems = append(problems, "storage.sqlite.path is required for the sqlite backend")
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q is not one of badger, sqlite, memory", c.Storage.Backend))
	}

	switch c.Import.Parser {
	case "rules", "auto":
	case "assist":
		if c.Assist.APIKey == "" {
			problems = append(problems, "assist.api_key is required when import.parser is assist")
		}
	default:
		problems = append(problems, fmt.Sprintf("import.parser %q is not one of rules, assist, auto", c.Import.Parser))
	}

	if c.Import.MaxUploadMB <= 0 {
		problems = append(problems, "import.max_upload_mb must be positive")
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			problems = append(problems, fmt.Sprintf("cache.ttl %q is not a duration", c.Cache.TTL))
		}
	}

	return problems
}
