package logging

import (
	"testing"
)

func TestFieldConstantsAreDistinct(t *testing.T) {
	fields := []string{
		FieldFile, FieldLine, FieldRunID, FieldOperation, FieldStatus,
		FieldCount, FieldInserted, FieldSkipped, FieldFlagged, FieldErrors,
		FieldDupGroup, FieldRowHash, FieldTransactionID, FieldCategory,
		FieldRule, FieldProvider, FieldBatch, FieldAccount, FieldSource,
		FieldDuration,
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == "" {
			t.Error("field constant should not be empty")
		}
		if seen[f] {
			t.Errorf("field constant %q defined twice", f)
		}
		seen[f] = true
	}
}
