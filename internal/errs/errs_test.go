package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesSentinelByKind(t *testing.T) {
	err := E(NodeNotFound, "placement.Resolve", errors.New("id 7"))

	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.NotErrorIs(t, err, ErrNodeNotAssociated)

	wrapped := fmt.Errorf("store document: %w", err)
	assert.ErrorIs(t, wrapped, ErrNodeNotFound)
	assert.Equal(t, NodeNotFound, KindOf(wrapped))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := E(StorageWriteFailed, "storage.Write", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage.Write: storage write failed: disk full", err.Error())
}

func TestClassOf(t *testing.T) {
	tests := []struct {
		err  error
		want Class
	}{
		{E(ValidationFailed, "op", nil), ClassInvalid},
		{E(InvalidMode, "op", nil), ClassInvalid},
		{E(DocumentNotFound, "op", nil), ClassNotFound},
		{E(DocumentTypeNotFound, "op", nil), ClassNotFound},
		{E(StorageReadFailed, "op", nil), ClassInfrastructure},
		{E(FileNotFound, "op", nil), ClassInfrastructure},
		{E(ReplacementConflict, "op", nil), ClassConflict},
		{errors.New("plain"), ClassInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassOf(tt.err))
		})
	}
}

func TestKind_Code(t *testing.T) {
	assert.Equal(t, "NODE_NOT_FOUND", NodeNotFound.Code())
	assert.Equal(t, "NODE_NOT_ASSOCIATED", NodeNotAssociated.Code())
	assert.Equal(t, "DOCUMENT_TYPE_NOT_FOUND", DocumentTypeNotFound.Code())
	assert.Equal(t, "INTERNAL_ERROR", KindUnknown.Code())
}
