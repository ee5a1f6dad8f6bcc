package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/ksysoev/crawldex/pkg/repo/index"
)

type appConfig struct {
	Corpus CorpusConfig `mapstructure:"corpus"`
	Index  IndexConfig  `mapstructure:"index"`
	Search SearchConfig `mapstructure:"search"`
}

// CorpusConfig holds configuration for the crawled document corpus.
type CorpusConfig struct {
	Path        string `mapstructure:"path"`
	FilePattern string `mapstructure:"file_pattern"`
}

// IndexConfig holds configuration for index construction and storage.
type IndexConfig struct {
	Path       string `mapstructure:"path"`
	TokenLimit int    `mapstructure:"token_limit"`
}

// SearchConfig holds configuration for query resolution.
type SearchConfig struct {
	Limit int `mapstructure:"limit"`
}

// loadConfig loads the application configuration from the specified file path
// and environment variables. It uses the provided args structure to determine
// the configuration path. The function returns a pointer to the appConfig
// structure and an error if something goes wrong.
func loadConfig(flags *cmdFlags) (*appConfig, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())

	v.SetDefault("corpus.path", "DEV")
	v.SetDefault("corpus.file_pattern", "**/*.json")
	v.SetDefault("index.path", "INDEX")
	v.SetDefault("index.token_limit", index.DefaultTokenLimit)
	v.SetDefault("search.limit", 5)

	if flags.ConfigPath != "" {
		v.SetConfigFile(flags.ConfigPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg appConfig

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	slog.Debug("Config loaded", slog.Any("config", cfg))

	return &cfg, nil
}
