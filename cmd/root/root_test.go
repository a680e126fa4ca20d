package root_test

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/csv-import/cmd/root"
	"finbook/csv-import/internal/importerror"
)

// Init registers persistent flags and must only run once per process.
var initOnce sync.Once

func setup(t *testing.T) {
	t.Helper()
	initOnce.Do(root.Init)
}

// setFlag marks a persistent flag as changed and restores it when the
// test ends, so flag state does not leak between tests.
func setFlag(t *testing.T, name, value string) {
	t.Helper()
	flag := root.Cmd.PersistentFlags().Lookup(name)
	require.NotNil(t, flag)
	require.NoError(t, flag.Value.Set(value))
	flag.Changed = true
	t.Cleanup(func() {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	})
}

func TestRootCommandMetadata(t *testing.T) {
	setup(t)

	assert.Equal(t, "csv-import", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "Import")
	assert.Contains(t, root.Cmd.Long, "duplicates")
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.True(t, root.Cmd.SilenceUsage)
}

func TestPersistentFlagsRegistered(t *testing.T) {
	setup(t)

	for _, name := range []string{"config", "log-level", "log-format"} {
		flag := root.Cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, name)
		assert.NotEmpty(t, flag.Usage, name)
	}
}

func TestPersistentPreRunDefaults(t *testing.T) {
	setup(t)
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CSVIMPORT_LOG_LEVEL", "")

	err := root.Cmd.PersistentPreRunE(root.Cmd, nil)
	require.NoError(t, err)

	cfg := root.GetConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, "openai", cfg.AI.Provider)
}

func TestPersistentPreRunRejectsBadLogLevel(t *testing.T) {
	setup(t)
	setFlag(t, "log-level", "loud")

	err := root.Cmd.PersistentPreRunE(root.Cmd, nil)
	var verr *importerror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "log-level", verr.Field)
}

func TestPersistentPreRunRejectsBadLogFormat(t *testing.T) {
	setup(t)
	setFlag(t, "log-format", "xml")

	err := root.Cmd.PersistentPreRunE(root.Cmd, nil)
	var verr *importerror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "log-format", verr.Field)
}

func TestPersistentPreRunAppliesLogLevelOverride(t *testing.T) {
	setup(t)
	setFlag(t, "log-level", "debug")

	require.NoError(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))

	assert.Equal(t, "debug", root.GetConfig().Log.Level)
	assert.Equal(t, logrus.DebugLevel, root.Log.GetLevel())
}

func TestGetContainerRequiresDatabaseURL(t *testing.T) {
	setup(t)
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))

	_, err := root.GetContainer(context.Background())
	var verr *importerror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "database.url", verr.Field)
}

func TestCloseContainerWithoutContainer(t *testing.T) {
	setup(t)

	assert.NotPanics(t, root.CloseContainer)
}
