package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
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
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
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
	base := New(CodeValidation, "missing size")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing size" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}
	base.WithDetails(map[string]any{"field": "size"})
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

	formatted := Newf(CodeNotFound, "order %s not found", "abc")
	if formatted.Message() != "order abc not found" {
		t.Fatalf("unexpected formatted message %q", formatted.Message())
	}
}

func TestAsAndIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeForbidden) {
		t.Fatalf("IsCode should match wrapped typed error")
	}
	if IsCode(stdErrors.New("plain"), CodeForbidden) {
		t.Fatalf("IsCode should not match untyped errors")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCapturesDriverDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users"}
	d := Dump(Wrap(CodeConflict, pgErr, "insert user"))
	if d.PGCode != "23505" || d.PGConstraint != "users_email_key" {
		t.Fatalf("expected pg fields, got %+v", d)
	}
	if d.Code != CodeConflict {
		t.Fatalf("expected typed code in dump, got %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}

	mongoErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "dup"}}}
	d = Dump(fmt.Errorf("insert order: %w", mongoErr))
	if len(d.MongoCodes) != 1 || d.MongoCodes[0] != 11000 {
		t.Fatalf("expected mongo write codes, got %+v", d.MongoCodes)
	}
}
