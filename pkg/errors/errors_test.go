package errors

import (
	"fmt"
	"testing"
)

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Code
	}{
		{401, CodeUnauthorized},
		{404, CodeNotFound},
		{409, CodeConflict},
		{400, CodeValidation},
		{422, CodeValidation},
		{500, CodeServer},
		{503, CodeServer},
	}
	for _, tc := range cases {
		if got := FromStatus(tc.status); got != tc.want {
			t.Fatalf("status %d: expected %s, got %s", tc.status, tc.want, got)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(New(CodeTimeout, "deadline exceeded")) {
		t.Fatal("timeout should be retryable")
	}
	if !Retryable(New(CodeNetwork, "connection refused")) {
		t.Fatal("network error should be retryable")
	}
	if Retryable(New(CodeValidation, "bad payload")) {
		t.Fatal("validation error should be terminal")
	}
	if Retryable(fmt.Errorf("plain error")) {
		t.Fatal("uncoded error should be terminal")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(CodeNetwork, cause, "dial failed")
	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	if err.Code() != CodeNetwork {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	inner := New(CodeUnauthorized, "token expired")
	wrapped := fmt.Errorf("session check: %w", inner)
	found := As(wrapped)
	if found == nil || found.Code() != CodeUnauthorized {
		t.Fatalf("expected to find unauthorized error, got %v", found)
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.Retryable {
		t.Fatal("unknown codes must not be retryable")
	}
}
