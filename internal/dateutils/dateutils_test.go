package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		dateStr   string
		expectErr bool
		expectedY int
		expectedM time.Month
		expectedD int
	}{
		{name: "ISO", dateStr: "2024-03-15", expectedY: 2024, expectedM: time.March, expectedD: 15},
		{name: "US padded slash", dateStr: "03/15/2024", expectedY: 2024, expectedM: time.March, expectedD: 15},
		{name: "US unpadded slash", dateStr: "3/5/2024", expectedY: 2024, expectedM: time.March, expectedD: 5},
		{name: "US two digit year", dateStr: "03/15/24", expectedY: 2024, expectedM: time.March, expectedD: 15},
		{name: "US dash", dateStr: "3-15-2024", expectedY: 2024, expectedM: time.March, expectedD: 15},
		{name: "ambiguous slash is month first", dateStr: "01/02/2024", expectedY: 2024, expectedM: time.January, expectedD: 2},
		{name: "day first when month slot impossible", dateStr: "15/01/2024", expectedY: 2024, expectedM: time.January, expectedD: 15},
		{name: "timestamp", dateStr: "2024-03-15 13:45:00", expectedY: 2024, expectedM: time.March, expectedD: 15},
		{name: "RFC3339", dateStr: "2024-03-15T13:45:00Z", expectedY: 2024, expectedM: time.March, expectedD: 15},
		{name: "month name", dateStr: "Mar 5, 2024", expectedY: 2024, expectedM: time.March, expectedD: 5},
		{name: "compact", dateStr: "20240315", expectedY: 2024, expectedM: time.March, expectedD: 15},
		{name: "surrounding whitespace", dateStr: "  2024-03-15  ", expectedY: 2024, expectedM: time.March, expectedD: 15},
		{name: "empty", dateStr: "", expectErr: true},
		{name: "garbage", dateStr: "not a date", expectErr: true},
		{name: "impossible date", dateStr: "13/32/2024", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.dateStr)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedY, got.Year())
			assert.Equal(t, tt.expectedM, got.Month())
			assert.Equal(t, tt.expectedD, got.Day())
		})
	}
}

func TestParseDateWithLayouts(t *testing.T) {
	// A profile layout wins over the default US interpretation.
	got, err := ParseDateWithLayouts("01/02/2024", []string{"02/01/2006"})
	require.NoError(t, err)
	assert.Equal(t, time.February, got.Month())
	assert.Equal(t, 1, got.Day())

	// Unusable profile layouts still fall through to the defaults.
	got, err = ParseDateWithLayouts("2024-03-15", []string{"02/01/2006"})
	require.NoError(t, err)
	assert.Equal(t, time.March, got.Month())
}

func TestLooksLikeSlashDate(t *testing.T) {
	tests := []struct {
		cell     string
		expected bool
	}{
		{"03/15/2024", true},
		{"3/5/24", true},
		{" 03/15/2024 ", true},
		{"2024-03-15", false},
		{"DEBIT", false},
		{"15/2024", false},
		{"99/99/2024", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			assert.Equal(t, tt.expected, LooksLikeSlashDate(tt.cell), tt.cell)
		})
	}
}

func TestCleanDateString(t *testing.T) {
	assert.Equal(t, "Mar 5, 2024", CleanDateString("  Mar \t 5,\n 2024 "))
	assert.Equal(t, "2024-03-15", CleanDateString("2024-03-15"))
	assert.Equal(t, "", CleanDateString("   "))
}

func TestToISODate(t *testing.T) {
	date := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-05", ToISODate(date))
}
