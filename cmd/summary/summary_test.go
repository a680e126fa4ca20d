package summary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/csv-import/cmd/summary"
)

func TestSummaryCommandMetadata(t *testing.T) {
	assert.Equal(t, "summary", summary.Cmd.Use)
	assert.Contains(t, summary.Cmd.Short, "Monthly")
	assert.Contains(t, summary.Cmd.Long, "category")
	assert.NotNil(t, summary.Cmd.RunE)
}

func TestSummaryCommandFlags(t *testing.T) {
	monthsFlag := summary.Cmd.Flags().Lookup("months")
	require.NotNil(t, monthsFlag)
	assert.Equal(t, "m", monthsFlag.Shorthand)
	assert.Equal(t, "3", monthsFlag.DefValue)

	outFlag := summary.Cmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)
	assert.Equal(t, "", outFlag.DefValue)
}
