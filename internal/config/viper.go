// Package config provides Viper-based hierarchical configuration
// management: defaults, then an optional config file, then environment
// variables.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"finbook/csv-import/internal/importerror"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		URL      string `mapstructure:"url" yaml:"-"` // Never serialize credentials
		MaxConns int    `mapstructure:"max_conns" yaml:"max_conns"`
	} `mapstructure:"database" yaml:"database"`

	Import struct {
		InputDir   string `mapstructure:"input_dir" yaml:"input_dir"`
		Recursive  bool   `mapstructure:"recursive" yaml:"recursive"`
		ProfileDir string `mapstructure:"profile_dir" yaml:"profile_dir"`
		SourceMode string `mapstructure:"source_mode" yaml:"source_mode"`
	} `mapstructure:"import" yaml:"import"`

	AI struct {
		Provider     string  `mapstructure:"provider" yaml:"provider"`
		Model        string  `mapstructure:"model" yaml:"model"`
		BatchSize    int     `mapstructure:"batch_size" yaml:"batch_size"`
		MaxTokens    int     `mapstructure:"max_tokens" yaml:"max_tokens"`
		Temperature  float64 `mapstructure:"temperature" yaml:"temperature"`
		PauseSeconds int     `mapstructure:"pause_seconds" yaml:"pause_seconds"`
		OpenAIAPIKey string  `mapstructure:"openai_api_key" yaml:"-"` // Never serialize API keys
		GeminiAPIKey string  `mapstructure:"gemini_api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`
}

// InitializeConfig loads the configuration. An explicit cfgFile must
// exist; otherwise the usual search paths are tried and a missing file is
// fine.
func InitializeConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.csv-import")
		v.AddConfigPath(".csv-import")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("CSVIMPORT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file
	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			Logger.Warnf("Error reading config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	// 5. Secrets always come from the conventional unprefixed variables
	for key, envVar := range map[string]string{
		"database.url":      "DATABASE_URL",
		"ai.openai_api_key": "OPENAI_API_KEY",
		"ai.gemini_api_key": "GEMINI_API_KEY",
	} {
		if err := v.BindEnv(key, envVar); err != nil {
			Logger.Warnf("Failed to bind %s environment variable: %v", envVar, err)
		}
	}

	// The conventional LOG_LEVEL variable works too, so a wrapper script
	// can raise verbosity without the prefix. CSVIMPORT_LOG_LEVEL wins.
	if err := v.BindEnv("log.level", "LOG_LEVEL"); err != nil {
		Logger.Warnf("Failed to bind LOG_LEVEL environment variable: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)

	// Import defaults
	v.SetDefault("import.input_dir", "")
	v.SetDefault("import.recursive", false)
	v.SetDefault("import.profile_dir", "")
	v.SetDefault("import.source_mode", "filename")

	// AI defaults
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.batch_size", 50)
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.pause_seconds", 2)

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return &importerror.ValidationError{Field: "log.level", Msg: config.Log.Level}
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return &importerror.ValidationError{Field: "log.format", Msg: fmt.Sprintf("%s (must be 'text' or 'json')", config.Log.Format)}
	}

	if len(config.CSV.Delimiter) != 1 {
		return &importerror.ValidationError{Field: "csv.delimiter", Msg: fmt.Sprintf("must be a single character, got: %s", config.CSV.Delimiter)}
	}

	if config.Database.MaxConns < 1 {
		return &importerror.ValidationError{Field: "database.max_conns", Msg: fmt.Sprintf("must be at least 1, got: %d", config.Database.MaxConns)}
	}

	switch config.AI.Provider {
	case "openai", "gemini":
	default:
		return &importerror.ValidationError{Field: "ai.provider", Msg: fmt.Sprintf("%s (must be 'openai' or 'gemini')", config.AI.Provider)}
	}

	if config.AI.BatchSize < 1 || config.AI.BatchSize > 500 {
		return &importerror.ValidationError{Field: "ai.batch_size", Msg: fmt.Sprintf("must be between 1 and 500, got: %d", config.AI.BatchSize)}
	}

	if config.AI.MaxTokens < 1 {
		return &importerror.ValidationError{Field: "ai.max_tokens", Msg: fmt.Sprintf("must be positive, got: %d", config.AI.MaxTokens)}
	}

	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		return &importerror.ValidationError{Field: "ai.temperature", Msg: fmt.Sprintf("must be between 0.0 and 2.0, got: %g", config.AI.Temperature)}
	}

	if config.AI.PauseSeconds < 0 {
		return &importerror.ValidationError{Field: "ai.pause_seconds", Msg: fmt.Sprintf("must not be negative, got: %d", config.AI.PauseSeconds)}
	}

	return nil
}

// APIKeyForProvider returns the API key matching the configured provider.
func (c *Config) APIKeyForProvider() string {
	if c.AI.Provider == "gemini" {
		return c.AI.GeminiAPIKey
	}
	return c.AI.OpenAIAPIKey
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
