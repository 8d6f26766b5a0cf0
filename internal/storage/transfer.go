package storage

import (
	"encoding/base64"

	"docserver/internal/errs"
)

// EncodeTransfer converts content to the base64 transfer form used by callers.
func EncodeTransfer(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeTransfer parses the base64 transfer form.
func DecodeTransfer(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.E(errs.ValidationFailed, "storage.DecodeTransfer", err)
	}
	return data, nil
}
