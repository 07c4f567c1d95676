package session

import (
	"context"
	"testing"
	"time"

	"ration-bot/internal/storage"
)

func TestMemoryStoreCopiesPayloads(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	order := &storage.Order{ID: 3, Address: "старый"}
	if err := store.Put(ctx, 1, FlowChangeOrder, LastOrder{Order: order}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	order.Address = "изменён снаружи"

	var got LastOrder
	found, err := store.Get(ctx, 1, FlowChangeOrder, &got)
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if got.Order == nil || got.Order.Address != "старый" {
		t.Errorf("store must keep its own copy, got %+v", got.Order)
	}
}

func TestMemoryStoreResetAndMarker(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, 1, FlowExportOrders, ExportOrders{DayOffset: 2}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Reset(ctx, 1, FlowExportOrders); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	var export ExportOrders
	found, err := store.Get(ctx, 1, FlowExportOrders, &export)
	if err != nil || !found {
		t.Fatalf("session must survive reset: found=%v err=%v", found, err)
	}
	if export.DayOffset != 0 {
		t.Errorf("payload not reset: %+v", export)
	}

	m, err := store.Marker(ctx, 1)
	if err != nil || !m.Idle() {
		t.Fatalf("expected idle marker, got %+v err=%v", m, err)
	}

	started := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	if err := store.SetMarker(ctx, 1, &Marker{Flow: FlowDropOrders, Step: StepConfirmDrop, StartedAt: started}); err != nil {
		t.Fatalf("SetMarker failed: %v", err)
	}
	m, err = store.Marker(ctx, 1)
	if err != nil {
		t.Fatalf("Marker failed: %v", err)
	}
	if m.Idle() || m.Step != StepConfirmDrop || !m.StartedAt.Equal(started) {
		t.Errorf("unexpected marker: %+v", m)
	}
}
