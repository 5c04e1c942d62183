package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForMapsTaxonomyToStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeInternal:     http.StatusInternalServerError,
		Code("bogus"):    http.StatusInternalServerError,
	}
	for code, status := range cases {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Fatalf("MetadataFor(%s) status = %d, want %d", code, got, status)
		}
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	base := New(CodeNotFound, "cart item not found")
	wrapped := fmt.Errorf("loading: %w", base)

	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", typed)
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatal("expected untyped errors to map to INTERNAL_ERROR")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stdErrors.New("db down")
	err := Wrap(CodeInternal, cause, "list notifications")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if CodeInternal.Exposable() {
		t.Fatal("internal errors must not expose their message")
	}
}
