package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/idempotency/memory"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := memory.NewStore(time.Hour)
	ctx := context.Background()

	response := ports.StoredResponse{
		StatusCode: 201,
		Body:       []byte(`{"order":{"id":"order-1"}}`),
		OrderID:    "order-1",
	}
	if err := store.Save(ctx, "checkout-1", response); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "checkout-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored response")
	}
	if got.StatusCode != 201 || got.OrderID != "order-1" {
		t.Errorf("unexpected response: %+v", got)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := memory.NewStore(time.Hour)

	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for a missing key, got %+v", got)
	}
}

func TestStoreFirstWriterWins(t *testing.T) {
	store := memory.NewStore(time.Hour)
	ctx := context.Background()

	if err := store.Save(ctx, "checkout-1", ports.StoredResponse{OrderID: "order-1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "checkout-1", ports.StoredResponse{OrderID: "order-2"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "checkout-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OrderID != "order-1" {
		t.Errorf("expected the first write preserved, got %q", got.OrderID)
	}
}

func TestStoreEntriesExpire(t *testing.T) {
	store := memory.NewStore(10 * time.Millisecond)
	ctx := context.Background()

	if err := store.Save(ctx, "checkout-1", ports.StoredResponse{OrderID: "order-1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	got, err := store.Get(ctx, "checkout-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired entry gone, got %+v", got)
	}

	// An expired slot can be reclaimed by a new writer.
	if err := store.Save(ctx, "checkout-1", ports.StoredResponse{OrderID: "order-2"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = store.Get(ctx, "checkout-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.OrderID != "order-2" {
		t.Errorf("expected new entry after expiry, got %+v", got)
	}
}
