package services_test

import (
	"context"
	"testing"

	"marquee/internal/services"
)

func TestCycleIDRoundTrip(t *testing.T) {
	ctx := services.WithCycleID(context.Background(), "c-123")
	if id, ok := services.CycleIDFromContext(ctx); !ok || id != "c-123" {
		t.Fatalf("unexpected cycle id: %v %v", id, ok)
	}
}

func TestCycleIDBlankPreservesContext(t *testing.T) {
	ctx := services.WithCycleID(context.Background(), "")
	if _, ok := services.CycleIDFromContext(ctx); ok {
		t.Fatal("expected no cycle id")
	}
}
