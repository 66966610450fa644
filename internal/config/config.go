// Package config loads process configuration from the environment and an
// optional config file, and hands it to the rest of the program as an
// explicit value. Nothing else in the module reads the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to run.
type Config struct {
	// DBPath is the SQLite database file. Required; its absence is
	// reported when the store is opened, not here.
	DBPath string

	// LogFile receives server logs. Empty means log to stderr —
	// stdout is never an option, the MCP transport owns it.
	LogFile string

	// QueryLimit is the default row cap applied by the query gate when
	// the caller's SELECT carries no LIMIT clause.
	QueryLimit int
}

// Load reads configuration from SLATE_* environment variables and, when
// present, ~/.slate/config.yaml. Environment variables win.
//
// Recognized keys: db (SLATE_DB), log (SLATE_LOG),
// query-limit (SLATE_QUERY_LIMIT).
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".slate"))
	}

	v.SetEnvPrefix("SLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", "")
	v.SetDefault("log", "")
	v.SetDefault("query-limit", 100)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: reading config file: %w", err)
		}
		// No config file is fine; env vars and defaults apply.
	}

	cfg := Config{
		DBPath:     v.GetString("db"),
		LogFile:    v.GetString("log"),
		QueryLimit: v.GetInt("query-limit"),
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = 100
	}
	return cfg, nil
}
