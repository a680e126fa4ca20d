package dupes_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/csv-import/cmd/dupes"
	"finbook/csv-import/cmd/root"
	"finbook/csv-import/internal/importerror"
)

var wireOnce sync.Once

func execute(t *testing.T, args ...string) error {
	t.Helper()
	wireOnce.Do(func() {
		root.Init()
		root.Cmd.AddCommand(dupes.Cmd)
	})
	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&out)
	root.Cmd.SetArgs(args)
	return root.Cmd.Execute()
}

func TestDupesCommandStructure(t *testing.T) {
	names := make([]string, 0, 2)
	for _, sub := range dupes.Cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"report", "resolve"}, names)
}

func TestResolveRejectsUnknownAction(t *testing.T) {
	err := execute(t, "dupes", "resolve", "--group", "DUP_0001", "--action", "toss")
	var verr *importerror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "action", verr.Field)
}

func TestResolveDeleteRequiresKeepID(t *testing.T) {
	err := execute(t, "dupes", "resolve", "--group", "DUP_0001", "--action", "delete")
	var verr *importerror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "keep-id", verr.Field)
}
