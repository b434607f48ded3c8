package shiprocket_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/adapters/memory"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/shiprocket"
)

type recordingTransitioner struct {
	mu    sync.Mutex
	calls []transitionCall
}

type transitionCall struct {
	orderID string
	target  domain.OrderStatus
	actor   string
	notes   string
}

func (r *recordingTransitioner) TransitionStatus(_ context.Context, orderID string, target domain.OrderStatus, actor, notes string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, transitionCall{orderID: orderID, target: target, actor: actor, notes: notes})
	return &domain.Order{ID: orderID, Status: target}, nil
}

func (r *recordingTransitioner) snapshot() []transitionCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]transitionCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestPollerAdvancesTrackedOrders(t *testing.T) {
	repo := memory.NewRepository()
	shipping := memory.NewShippingStub()
	transitions := &recordingTransitioner{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, repo.Create(context.Background(), domain.Order{
		ID:          "order-1",
		OrderNumber: "YT-20260830-0001",
		UserID:      "user-1",
		Status:      domain.StatusProcessing,
		IsPaid:      true,
		Shipment:    &domain.Shipment{ProviderOrderID: "sr-1", ShipmentID: "shp-1"},
	}))
	shipping.SetStatus("shp-1", "In Transit")

	poller := shiprocket.NewPoller(repo, shipping, transitions, logger, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(transitions.snapshot()) == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("poller never advanced the order")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	calls := transitions.snapshot()
	require.NotEmpty(t, calls)
	assert.Equal(t, "order-1", calls[0].orderID)
	assert.Equal(t, domain.StatusShipped, calls[0].target)
	assert.Equal(t, "shipment-poller", calls[0].actor)
	assert.Equal(t, "In Transit", calls[0].notes)

	// The courier status lands on the shipment record too.
	order, err := repo.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "In Transit", order.Shipment.Status)
}

func TestPollerSkipsUnchangedStatus(t *testing.T) {
	repo := memory.NewRepository()
	shipping := memory.NewShippingStub()
	transitions := &recordingTransitioner{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, repo.Create(context.Background(), domain.Order{
		ID:       "order-1",
		UserID:   "user-1",
		Status:   domain.StatusShipped,
		IsPaid:   true,
		Shipment: &domain.Shipment{ProviderOrderID: "sr-1", ShipmentID: "shp-1", Status: "In Transit"},
	}))
	shipping.SetStatus("shp-1", "In Transit")

	poller := shiprocket.NewPoller(repo, shipping, transitions, logger, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	poller.Run(ctx)

	assert.Empty(t, transitions.snapshot())
}
