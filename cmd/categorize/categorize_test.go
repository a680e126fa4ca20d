package categorize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/csv-import/cmd/categorize"
)

func TestCategorizeCommandMetadata(t *testing.T) {
	assert.Equal(t, "categorize", categorize.Cmd.Use)
	assert.Contains(t, categorize.Cmd.Short, "Categorize")
	assert.Contains(t, categorize.Cmd.Long, "vendor")
	assert.NotNil(t, categorize.Cmd.RunE)
}

func TestCategorizeCommandFlags(t *testing.T) {
	batchFlag := categorize.Cmd.Flags().Lookup("batch")
	require.NotNil(t, batchFlag)
	assert.Equal(t, "int", batchFlag.Value.Type())
	assert.Equal(t, "0", batchFlag.DefValue)

	limitFlag := categorize.Cmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "int", limitFlag.Value.Type())
	assert.Equal(t, "0", limitFlag.DefValue)

	dryRunFlag := categorize.Cmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRunFlag)
	assert.Equal(t, "bool", dryRunFlag.Value.Type())
	assert.Equal(t, "false", dryRunFlag.DefValue)
}
