// Package policy holds the static tables that turn document type policy into
// placement decisions: the storage mode letter used as a path segment and the
// lifetime projection used both for temporary folders and expiration records.
package policy

import (
	"fmt"

	"docserver/internal/errs"
	"docserver/internal/model"
)

var modeLetters = map[model.StorageMode]string{
	model.StorageModeWriteOnceReadMany: "W",
	model.StorageModeEditable:          "E",
	model.StorageModeTemporary:         "T",
	model.StorageModeVersioned:         "V",
	model.StorageModeReplaceable:       "R",
}

// ModeLetter returns the single-letter path segment for mode.
func ModeLetter(mode model.StorageMode) (string, error) {
	letter, ok := modeLetters[mode]
	if !ok {
		return "", errs.E(errs.InvalidMode, "policy.ModeLetter", fmt.Errorf("storage mode %d", mode))
	}
	return letter, nil
}
