package export

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines export error kinds.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindDegraded   ErrorKind = "degraded"
	KindRowRender  ErrorKind = "row_render"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
	KindNotImpl    ErrorKind = "not_implemented"
)

// Severity ranks how far an error propagates.
type Severity string

const (
	// SeverityRecoverable errors are handled locally (fallback, skipped row).
	SeverityRecoverable Severity = "recoverable"
	// SeverityRequest errors reject the request with a client-facing message.
	SeverityRequest Severity = "request"
	// SeverityFatal errors abort the export with a generic failure.
	SeverityFatal Severity = "fatal"
)

// ExportError wraps errors with a kind.
type ExportError struct {
	Kind     ErrorKind
	Severity Severity
	Msg      string
	Details  string
	// Field names the rejected request field when Allowed is set.
	Field   string
	Allowed []string
	Err     error
}

func (e *ExportError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a client-facing hint.
func (e *ExportError) WithDetails(details string) *ExportError {
	e.Details = details
	return e
}

// WithAllowed records the enumerated values accepted for field.
func (e *ExportError) WithAllowed(field string, allowed []string) *ExportError {
	e.Field = field
	e.Allowed = append([]string(nil), allowed...)
	return e
}

// NewError creates a new export error.
func NewError(kind ErrorKind, msg string, err error) *ExportError {
	return &ExportError{Kind: kind, Severity: severityForKind(kind), Msg: msg, Err: err}
}

func severityForKind(kind ErrorKind) Severity {
	switch kind {
	case KindDegraded, KindRowRender:
		return SeverityRecoverable
	case KindValidation, KindNotFound:
		return SeverityRequest
	default:
		return SeverityFatal
	}
}

// AsExportError extracts an ExportError from the chain.
func AsExportError(err error) (*ExportError, bool) {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr, true
	}
	return nil, false
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindInternal
	msg := err.Error()

	if exportErr, ok := AsExportError(err); ok {
		kind = exportErr.Kind
		if exportErr.Msg != "" {
			msg = exportErr.Msg
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		kind = KindCanceled
	}

	switch kind {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case KindNotImpl:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("not_implemented")
	case KindDegraded:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("degraded")
	case KindRowRender:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("row_render")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its export error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if exportErr, ok := AsExportError(err); ok {
		return exportErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindInternal
}

// IsDegraded reports whether err signals an unavailable rendering backend.
func IsDegraded(err error) bool {
	return KindFromError(err) == KindDegraded
}
