package config

import "github.com/bobmcallan/vire-folio/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "dev",
		Server: ServerConfig{
			Port: 4250,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Backend: "badger",
			Badger: BadgerConfig{
				Path: "./data/folio",
			},
			SQLite: SQLiteConfig{
				Path: "./data/folio.db",
			},
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
		Import: ImportConfig{
			Parser:      "rules",
			MaxUploadMB: 20,
		},
		Assist: AssistConfig{
			Model:      "gemini-2.5-flash",
			SampleRows: 200,
		},
		Cache: CacheConfig{
			TTL:        "5m",
			MaxEntries: 64,
		},
		Display: DisplayConfig{
			Currency: common.DefaultCurrency,
		},
	}
}
