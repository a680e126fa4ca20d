// Package root contains the root command for the application
package root

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"finbook/csv-import/internal/common"
	"finbook/csv-import/internal/config"
	"finbook/csv-import/internal/container"
	"finbook/csv-import/internal/fileutils"
	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/normalize"
)

var (
	// Log is the shared logger instance for commands.
	Log = logrus.New()

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "csv-import",
		Short: "Import bank and card CSV exports into the transaction store.",
		Long: `csv-import ingests bank and credit-card CSV exports: it normalizes
heterogeneous formats into one canonical transaction schema, skips
duplicates across repeated imports, flags near-duplicates for review,
and assigns spending categories via vendor rules and an AI classifier.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			loaded, err := config.InitializeConfig(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				if _, err := logrus.ParseLevel(logLevel); err != nil {
					return &importerror.ValidationError{Field: "log-level", Msg: logLevel}
				}
				loaded.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				if logFormat != "text" && logFormat != "json" {
					return &importerror.ValidationError{Field: "log-format", Msg: logFormat}
				}
				loaded.Log.Format = logFormat
			}
			cfg = loaded

			// Reconfigure the shared logger and hand it to the packages
			// that log through a package-level logrus instance.
			Log = config.ConfigureLoggingFromConfig(cfg)
			normalize.SetLogger(Log)
			fileutils.SetLogger(Log)
			common.SetLogger(Log)
			common.SetDelimiter([]rune(cfg.CSV.Delimiter)[0])
			return nil
		},
		SilenceUsage: true,
	}

	cfgFile   string
	logLevel  string
	logFormat string

	cfg  *config.Config
	cont *container.Container
)

// Init initializes the root command and its persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default searches ., .csv-import and $HOME/.csv-import)")
	Cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	Cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

// GetConfig returns the configuration loaded by the persistent pre-run.
func GetConfig() *config.Config {
	return cfg
}

// GetContainer returns the shared dependency container, connecting to
// the store on first use so commands that never touch it do not need a
// database.
func GetContainer(ctx context.Context) (*container.Container, error) {
	if cont != nil {
		return cont, nil
	}
	c, err := container.NewContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cont = c
	return cont, nil
}

// CloseContainer releases the container if a command created one. main
// calls this after Execute returns.
func CloseContainer() {
	if cont == nil {
		return
	}
	if err := cont.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close container")
	}
	cont = nil
}
