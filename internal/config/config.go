// Package config: environment bootstrap helpers used before Viper is
// initialized. The CLI calls LoadEnv before reading its config so a
// local .env can provide DATABASE_URL and API keys during development.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	// Logger is the process-wide logger until the CLI reconfigures it
	// from the loaded configuration.
	Logger = logrus.New()
)

// ConfigureLogging sets up logging from LOG_LEVEL and LOG_FORMAT. It runs
// before the config file is read so early startup messages already honor
// the environment.
func ConfigureLogging() *logrus.Logger {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		Logger.Warnf("Invalid log level '%s', using 'info'", logLevelStr)
		logLevel = logrus.InfoLevel
	}
	Logger.SetLevel(logLevel)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return Logger
}

// LoadEnv loads environment variables from a .env file if one exists in
// the working directory or its parent. Missing files are fine.
func LoadEnv() {
	once.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				Logger.Debug("No .env file found, using environment variables")
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			Logger.Warnf("Error loading .env file: %v", err)
			return
		}
		Logger.Debugf("Loaded environment variables from %s", envFile)

		ConfigureLogging()
	})
}
