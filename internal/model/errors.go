package model

import (
	"fmt"
	"strings"
)

// InputInvalidError reports a canonical model or input file that cannot be
// processed at all.
type InputInvalidError struct {
	Reason string
}

func (e *InputInvalidError) Error() string {
	return fmt.Sprintf("input invalid: %s", e.Reason)
}

// NewInputInvalidError creates a new input error.
func NewInputInvalidError(reason string) *InputInvalidError {
	return &InputInvalidError{Reason: reason}
}

// Violation is a single schema violation reported by the XSD validator.
type Violation struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// SchemaInvalidError reports that the XSD rejected a document. Violations
// keep the order the validator emitted them in.
type SchemaInvalidError struct {
	Violations []Violation
}

func (e *SchemaInvalidError) Error() string {
	if len(e.Violations) == 0 {
		return "schema validation failed"
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// NewSchemaInvalidError creates a new schema error.
func NewSchemaInvalidError(violations []Violation) *SchemaInvalidError {
	return &SchemaInvalidError{Violations: violations}
}

// AttachmentMissingError reports that a PDF carries no XML attachment or
// cannot be opened as a PDF at all.
type AttachmentMissingError struct {
	Message string
	Cause   error
}

func (e *AttachmentMissingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%v)", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AttachmentMissingError) Unwrap() error {
	return e.Cause
}

// NewAttachmentMissingError creates a new attachment error.
func NewAttachmentMissingError(message string, cause error) *AttachmentMissingError {
	return &AttachmentMissingError{Message: message, Cause: cause}
}

// IOError wraps a filesystem failure.
type IOError struct {
	Op    string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// NewIOError creates a new I/O error.
func NewIOError(op string, cause error) *IOError {
	return &IOError{Op: op, Cause: cause}
}

// WarningCode classifies recoverable conditions encountered during import.
type WarningCode string

const (
	// WarnMalformedNumber marks a numeric field that did not parse; the
	// field was set to zero.
	WarnMalformedNumber WarningCode = "MalformedNumber"
	// WarnMalformedDate marks a date field that did not parse; the field
	// was left empty.
	WarnMalformedDate WarningCode = "MalformedDate"
	// WarnUnknownCode marks a code outside the frozen code tables; the
	// code is carried through verbatim.
	WarnUnknownCode WarningCode = "UnknownCode"
	// WarnExtendedConformant marks a document that failed the EN 16931
	// schema but passed the Extended profile.
	WarnExtendedConformant WarningCode = "ExtendedConformant"
)

// Warning is a recoverable condition; the operation still produced a result.
type Warning struct {
	Code   WarningCode `json:"code"`
	Field  string      `json:"field,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	switch {
	case w.Field != "" && w.Detail != "":
		return fmt.Sprintf("%s: %s: %s", w.Code, w.Field, w.Detail)
	case w.Field != "":
		return fmt.Sprintf("%s: %s", w.Code, w.Field)
	default:
		return string(w.Code)
	}
}
