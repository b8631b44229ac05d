package invoice

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Malformed ids are rejected before any query runs, so no pool is needed.
func TestPostgresRepositoryRejectsMalformedIDs(t *testing.T) {
	repo := NewPostgresRepository(nil)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.ListByCustomer(ctx, "not-a-uuid"); err == nil {
		t.Fatalf("expected error for malformed customer id")
	}
	if err := repo.MarkPaid(ctx, "not-a-uuid", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
