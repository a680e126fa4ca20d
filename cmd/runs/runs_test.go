package runs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/csv-import/cmd/runs"
)

func TestRunsCommandMetadata(t *testing.T) {
	assert.Equal(t, "runs", runs.Cmd.Use)
	assert.Contains(t, runs.Cmd.Short, "processing runs")
	assert.Contains(t, runs.Cmd.Long, "processing log")
	assert.NotNil(t, runs.Cmd.RunE)
}

func TestRunsCommandFlags(t *testing.T) {
	limitFlag := runs.Cmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "n", limitFlag.Shorthand)
	assert.Equal(t, "int", limitFlag.Value.Type())
	assert.Equal(t, "20", limitFlag.DefValue)
}
