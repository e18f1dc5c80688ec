package repository

import (
	"errors"
	"testing"
)

func TestRecordID(t *testing.T) {
	id, err := recordID("3f2b9a54-5a7e-4d37-9b0c-2f1d6f0e8a11")
	if err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
	if id.String() != "3f2b9a54-5a7e-4d37-9b0c-2f1d6f0e8a11" {
		t.Fatalf("unexpected id %s", id)
	}
	for _, raw := range []string{"", "not-a-uuid", "3f2b9a54"} {
		if _, err := recordID(raw); !errors.Is(err, ErrNotFound) {
			t.Fatalf("recordID(%q) = %v, want ErrNotFound", raw, err)
		}
	}
}
