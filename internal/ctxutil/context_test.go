package ctxutil

import (
	"context"
	"testing"
)

func TestUserID(t *testing.T) {
	ctx := context.Background()

	if got := GetUserID(ctx); got != "" {
		t.Errorf("GetUserID() on empty context = %q, want empty", got)
	}

	ctx = WithUserID(ctx, "user-42")
	if got := GetUserID(ctx); got != "user-42" {
		t.Errorf("GetUserID() = %q, want %q", got, "user-42")
	}
}

func TestUserID_EmptyValueIgnored(t *testing.T) {
	ctx := WithUserID(context.Background(), "")
	if got := GetUserID(ctx); got != "" {
		t.Errorf("GetUserID() with empty value = %q, want empty", got)
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetRequestID(ctx); ok {
		t.Error("GetRequestID() on empty context should report not found")
	}

	ctx = WithRequestID(ctx, "req-1")
	requestID, ok := GetRequestID(ctx)
	if !ok || requestID != "req-1" {
		t.Errorf("GetRequestID() = (%q, %v), want (%q, true)", requestID, ok, "req-1")
	}
}
