package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsCodeAndCodeOf(t *testing.T) {
	inner := New(CodeNotFound, "lead not found")
	wrapped := fmt.Errorf("load lead: %w", inner)

	if !IsCode(wrapped, CodeNotFound) {
		t.Fatalf("expected wrapped error to carry not found code")
	}
	if IsCode(wrapped, CodeForbidden) {
		t.Fatalf("unexpected forbidden match")
	}
	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Fatalf("expected not found code, got %s", got)
	}
	if got := CodeOf(stdErrors.New("plain")); got != CodeInternal {
		t.Fatalf("expected internal code for untyped error, got %s", got)
	}
}

func TestInvalidPointsAtField(t *testing.T) {
	err := Invalid("vehicle_id", "must be a uuid")
	if err.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", err.Code())
	}
	details, ok := err.Details().(map[string]any)
	if !ok || details["field"] != "vehicle_id" {
		t.Fatalf("expected field details, got %#v", err.Details())
	}
}

func TestExposeMessageOnlyForClientCodes(t *testing.T) {
	if !MetadataFor(CodeStateConflict).ExposeMessage {
		t.Fatalf("state conflicts should surface their message")
	}
	if MetadataFor(CodeInternal).ExposeMessage || MetadataFor(CodeDependency).ExposeMessage {
		t.Fatalf("server-side codes must keep the public message")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("timeout"), "load leads")
	if got := err.Error(); got != "DEPENDENCY_ERROR: load leads: timeout" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "load memberships")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
	if dump.Postgres != nil {
		t.Fatalf("expected no postgres details for plain error, got %+v", dump.Postgres)
	}
	if _, ok := dump.Fields()["pg_code"]; ok {
		t.Fatalf("pg fields should be omitted")
	}
}

func TestDumpReadsPgxError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "team_members_dealer_user_key", TableName: "team_members"}
	dump := Dump(Wrap(CodeConflict, fmt.Errorf("insert member: %w", pgErr), "already a member"))

	if dump.Postgres == nil || dump.Postgres.Code != "23505" {
		t.Fatalf("expected pg details, got %+v", dump.Postgres)
	}
	if dump.Fields()["pg_constraint"] != "team_members_dealer_user_key" {
		t.Fatalf("unexpected fields %#v", dump.Fields())
	}
}
