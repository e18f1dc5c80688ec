package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	original := NewDuplicateKey("ticketId already exists", map[string]any{"ticketId": "T1"})
	wrapped := fmt.Errorf("create ticket: %w", original)

	got := ToDomainError(wrapped)
	if got.Code != CodeDuplicateKey {
		t.Fatalf("expected %s, got %s", CodeDuplicateKey, got.Code)
	}
	if got.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected 409, got %d", got.HTTPStatus)
	}
	if got.Details["ticketId"] != "T1" {
		t.Fatalf("details lost: %+v", got.Details)
	}
}

func TestToDomainErrorWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("connection refused")
	got := ToDomainError(cause)
	if got.Code != CodeInternal || got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if !errors.Is(got, cause) {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatalf("expected nil")
	}
}

func TestHasCode(t *testing.T) {
	err := NewNotFound("asset", nil)
	if !HasCode(err, CodeNotFound) {
		t.Fatalf("expected NOT_FOUND code")
	}
	if HasCode(err, CodeConflict) {
		t.Fatalf("did not expect CONFLICT code")
	}
	if HasCode(errors.New("plain"), CodeNotFound) {
		t.Fatalf("plain errors carry no code")
	}
}
