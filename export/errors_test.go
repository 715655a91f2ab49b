package export

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errorslib "github.com/goliatone/go-errors"
)

func TestAsGoErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		category errorslib.Category
		code     string
	}{
		{NewError(KindValidation, "bad input", nil), errorslib.CategoryValidation, "validation"},
		{NewError(KindNotFound, "missing", nil), errorslib.CategoryNotFound, "not_found"},
		{NewError(KindDegraded, "no engine", nil), errorslib.CategoryOperation, "degraded"},
		{context.DeadlineExceeded, errorslib.CategoryOperation, "timeout"},
		{context.Canceled, errorslib.CategoryOperation, "canceled"},
		{NewError(KindInternal, "boom", nil), errorslib.CategoryInternal, "internal"},
		{errors.New("plain"), errorslib.CategoryInternal, "internal"},
	}

	for _, tc := range cases {
		mapped := AsGoError(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapping for %v", tc.err)
		}
		if mapped.Category != tc.category {
			t.Fatalf("expected category %s, got %s", tc.category, mapped.Category)
		}
		if mapped.TextCode != tc.code {
			t.Fatalf("expected text code %s, got %s", tc.code, mapped.TextCode)
		}
	}
}

func TestNewError_Severity(t *testing.T) {
	cases := map[ErrorKind]Severity{
		KindValidation: SeverityRequest,
		KindNotFound:   SeverityRequest,
		KindDegraded:   SeverityRecoverable,
		KindRowRender:  SeverityRecoverable,
		KindInternal:   SeverityFatal,
	}
	for kind, want := range cases {
		if got := NewError(kind, "x", nil).Severity; got != want {
			t.Fatalf("kind %s: expected severity %s, got %s", kind, want, got)
		}
	}
}

func TestKindFromError_Wrapped(t *testing.T) {
	inner := NewError(KindDegraded, "engine unavailable", nil)
	wrapped := fmt.Errorf("render: %w", inner)
	if KindFromError(wrapped) != KindDegraded {
		t.Fatalf("expected degraded kind through wrap")
	}
	if !IsDegraded(wrapped) {
		t.Fatalf("expected IsDegraded")
	}
	if KindFromError(nil) != "" {
		t.Fatalf("expected empty kind for nil")
	}
}

func TestExportError_WithAllowed(t *testing.T) {
	allowed := []string{"csv", "pdf"}
	err := NewError(KindValidation, "unknown format", nil).WithAllowed("format", allowed)
	allowed[0] = "mutated"
	if err.Allowed[0] != "csv" {
		t.Fatalf("expected allowed list to be copied")
	}
	if err.Field != "format" {
		t.Fatalf("expected field, got %q", err.Field)
	}
}
