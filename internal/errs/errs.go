// Package errs defines the typed failure kinds returned by the placement
// engine and a coarse classification callers can use to pick a response:
// bad input, missing entity, lost race, or infrastructure failure.
package errs

import (
	"errors"
	"strings"
)

// Kind identifies a failure kind.
type Kind int

const (
	KindUnknown Kind = iota
	NodeNotFound
	NodeNotAssociated
	InvalidMode
	InvalidLifetime
	DocumentTypeNotFound
	NoStorageNodeConfigured
	StorageWriteFailed
	StorageReadFailed
	FileNotFound
	DocumentNotFound
	ValidationFailed
	MetadataFailed
	ReplacementConflict
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	NodeNotFound:            "node not found",
	NodeNotAssociated:       "node not associated with document type",
	InvalidMode:             "invalid storage mode",
	InvalidLifetime:         "invalid document lifetime",
	DocumentTypeNotFound:    "document type not found",
	NoStorageNodeConfigured: "no storage node configured",
	StorageWriteFailed:      "storage write failed",
	StorageReadFailed:       "storage read failed",
	FileNotFound:            "file not found",
	DocumentNotFound:        "document not found",
	ValidationFailed:        "validation failed",
	MetadataFailed:          "metadata store failed",
	ReplacementConflict:     "replacement conflict",
}

// String returns the human readable name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Code returns a stable machine-readable code, e.g. "NODE_NOT_FOUND".
func (k Kind) Code() string {
	switch k {
	case NodeNotAssociated:
		return "NODE_NOT_ASSOCIATED"
	case KindUnknown:
		return "INTERNAL_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(k.String(), " ", "_"))
}

// Class groups kinds by how a caller should react to them.
type Class int

const (
	// ClassInfrastructure covers I/O and metadata store failures. Retrying may help.
	ClassInfrastructure Class = iota
	// ClassInvalid covers malformed input or document type policy.
	ClassInvalid
	// ClassNotFound covers references to entities that do not exist.
	ClassNotFound
	// ClassConflict covers a lost optimistic concurrency race.
	ClassConflict
)

// String returns the string representation of Class
func (c Class) String() string {
	switch c {
	case ClassInvalid:
		return "invalid"
	case ClassNotFound:
		return "not_found"
	case ClassConflict:
		return "conflict"
	default:
		return "infrastructure"
	}
}

// Class returns the classification of the kind.
func (k Kind) Class() Class {
	switch k {
	case InvalidMode, InvalidLifetime, ValidationFailed, NodeNotAssociated, NoStorageNodeConfigured:
		return ClassInvalid
	case NodeNotFound, DocumentTypeNotFound, DocumentNotFound:
		return ClassNotFound
	case ReplacementConflict:
		return ClassConflict
	default:
		return ClassInfrastructure
	}
}

// Error is a failure of a given Kind raised by operation Op.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// E builds an Error of the given kind.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Sentinels for errors.Is matching.
var (
	ErrNodeNotFound            = &Error{Kind: NodeNotFound}
	ErrNodeNotAssociated       = &Error{Kind: NodeNotAssociated}
	ErrInvalidMode             = &Error{Kind: InvalidMode}
	ErrInvalidLifetime         = &Error{Kind: InvalidLifetime}
	ErrDocumentTypeNotFound    = &Error{Kind: DocumentTypeNotFound}
	ErrNoStorageNodeConfigured = &Error{Kind: NoStorageNodeConfigured}
	ErrStorageWriteFailed      = &Error{Kind: StorageWriteFailed}
	ErrStorageReadFailed       = &Error{Kind: StorageReadFailed}
	ErrFileNotFound            = &Error{Kind: FileNotFound}
	ErrDocumentNotFound        = &Error{Kind: DocumentNotFound}
	ErrValidationFailed        = &Error{Kind: ValidationFailed}
	ErrMetadataFailed          = &Error{Kind: MetadataFailed}
	ErrReplacementConflict     = &Error{Kind: ReplacementConflict}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ClassOf classifies err. Errors outside this package count as infrastructure.
func ClassOf(err error) Class {
	return KindOf(err).Class()
}
