package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ration-bot/internal/session"
	"ration-bot/pkg/redis"

	"github.com/alicebob/miniredis/v2"
)

func newStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0)
	t.Cleanup(client.Close)

	return NewSessionStore(client, ttl), mr
}

func TestPayloadRoundTrip(t *testing.T) {
	store, _ := newStore(t, 0)
	ctx := context.Background()

	var empty session.CreateOrder
	found, err := store.Get(ctx, 1, session.FlowCreateOrder, &empty)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Fatal("nothing should be stored yet")
	}

	in := session.CreateOrder{Duration: 5, FirstName: "Анна", Months: []string{"2026-10", "2026-11"}}
	if err := store.Put(ctx, 1, session.FlowCreateOrder, in); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var out session.CreateOrder
	if found, err := store.Get(ctx, 1, session.FlowCreateOrder, &out); err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if out.Duration != 5 || out.FirstName != "Анна" || len(out.Months) != 2 {
		t.Errorf("unexpected payload: %+v", out)
	}

	// other chats and flows are independent
	var other session.CreateOrder
	if found, _ := store.Get(ctx, 2, session.FlowCreateOrder, &other); found {
		t.Error("chat 2 must not see chat 1 payload")
	}
}

func TestResetKeepsSessionWithInitialShape(t *testing.T) {
	store, mr := newStore(t, 0)
	ctx := context.Background()

	if err := store.Put(ctx, 1, session.FlowCreateOrder, session.CreateOrder{Duration: 3}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Reset(ctx, 1, session.FlowCreateOrder); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if !mr.Exists(session.PayloadKey(1, session.FlowCreateOrder)) {
		t.Fatal("reset must keep the key")
	}

	var out session.CreateOrder
	if _, err := store.Get(ctx, 1, session.FlowCreateOrder, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.Duration != 0 {
		t.Errorf("payload not reset: %+v", out)
	}
}

func TestMarker(t *testing.T) {
	store, mr := newStore(t, time.Hour)
	ctx := context.Background()

	m, err := store.Marker(ctx, 7)
	if err != nil {
		t.Fatalf("Marker failed: %v", err)
	}
	if !m.Idle() {
		t.Fatalf("fresh chat must be idle, got %+v", m)
	}

	m = &session.Marker{
		Flow:        session.FlowCreateOrder,
		Step:        session.StepAskPhone,
		RunID:       "run-1",
		LastEventID: 10,
		Effects:     map[string]json.RawMessage{"persist_order": json.RawMessage(`{"id":1}`)},
	}
	if err := store.SetMarker(ctx, 7, m); err != nil {
		t.Fatalf("SetMarker failed: %v", err)
	}

	got, err := store.Marker(ctx, 7)
	if err != nil {
		t.Fatalf("Marker failed: %v", err)
	}
	if got.Flow != session.FlowCreateOrder || got.Step != session.StepAskPhone || got.LastEventID != 10 {
		t.Errorf("unexpected marker: %+v", got)
	}
	if string(got.Effects["persist_order"]) != `{"id":1}` {
		t.Errorf("effects lost: %v", got.Effects)
	}

	if ttl := mr.TTL(session.MarkerKey(7)); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}
}
