package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestStatusErrorKinds(t *testing.T) {
	cases := []struct {
		status    int
		kind      error
		transient bool
	}{
		{429, ErrQuotaExceeded, true},
		{500, ErrServiceUnavailable, true},
		{503, ErrServiceUnavailable, true},
		{401, ErrServiceUnavailable, false},
		{400, ErrMalformedResponse, false},
	}

	for _, tc := range cases {
		err := statusError("test", tc.status, fmt.Errorf("boom"))
		if !errors.Is(err, tc.kind) {
			t.Fatalf("status %d: expected kind %v, got %v", tc.status, tc.kind, err)
		}
		if IsTransient(err) != tc.transient {
			t.Fatalf("status %d: expected transient=%v", tc.status, tc.transient)
		}
	}
}

func TestAdapterErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("stage: %w", transportError("google", cause))

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected service unavailable kind")
	}

	var adapterErr *AdapterError
	if !errors.As(err, &adapterErr) || adapterErr.Adapter != "google" {
		t.Fatalf("expected AdapterError for google, got %v", err)
	}
}

func TestIsTransientContext(t *testing.T) {
	if !IsTransient(transportError("x", context.DeadlineExceeded)) {
		t.Fatalf("deadline exceeded should be transient")
	}
	if IsTransient(transportError("x", context.Canceled)) {
		t.Fatalf("cancellation should not be transient")
	}
	if IsTransient(nil) {
		t.Fatalf("nil is not transient")
	}
	if IsTransient(malformedError("x", "bad json")) {
		t.Fatalf("malformed responses are not transient")
	}
}
