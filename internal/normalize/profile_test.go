package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()

	assert.Equal(t, "auto", p.Name)
	assert.Contains(t, p.Date, "Posting Date")
	assert.Contains(t, p.Description, "Payee")
	assert.Contains(t, p.Reference, "Check or Slip #")
	assert.False(t, p.Negate)
	assert.Empty(t, p.DateFormats)
}

func TestLoadProfile_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `name: amex_card
date: ["Datum"]
date_formats: ["02/01/2006"]
negate: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "amex.yaml"), []byte(content), 0o644))

	p, err := LoadProfile(dir, "amex")
	require.NoError(t, err)

	assert.Equal(t, "amex_card", p.Name)
	assert.Equal(t, []string{"Datum"}, p.Date)
	assert.Equal(t, []string{"02/01/2006"}, p.DateFormats)
	assert.True(t, p.Negate)
	// Lists the profile did not touch keep their default candidates.
	assert.Contains(t, p.Description, "Description")
	assert.Contains(t, p.Amount, "Amount")
}

func TestLoadProfile_NameDefaultsToFileStem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chase.yaml"), []byte("negate: false\n"), 0o644))

	p, err := LoadProfile(dir, "chase")
	require.NoError(t, err)
	assert.Equal(t, "chase", p.Name)
}

func TestLoadProfile_Missing(t *testing.T) {
	_, err := LoadProfile(t.TempDir(), "nope")
	assert.Error(t, err)
}

func TestLoadProfile_BadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("date: [unclosed\n"), 0o644))

	_, err := LoadProfile(dir, "broken")
	assert.Error(t, err)
}
