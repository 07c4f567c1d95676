package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps sessions in process memory. Payloads are stored encoded,
// so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, chatID int64, flow Flow, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[PayloadKey(chatID, flow)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s payload: %w", flow, err)
	}
	return true, nil
}

func (s *MemoryStore) Put(_ context.Context, chatID int64, flow Flow, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", flow, err)
	}
	s.mu.Lock()
	s.data[PayloadKey(chatID, flow)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context, chatID int64, flow Flow) error {
	return s.Put(ctx, chatID, flow, Initial(flow))
}

func (s *MemoryStore) Marker(_ context.Context, chatID int64) (*Marker, error) {
	s.mu.RLock()
	raw, ok := s.data[MarkerKey(chatID)]
	s.mu.RUnlock()
	if !ok {
		return &Marker{}, nil
	}
	var m Marker
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal marker: %w", err)
	}
	return &m, nil
}

func (s *MemoryStore) SetMarker(_ context.Context, chatID int64, m *Marker) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}
	s.mu.Lock()
	s.data[MarkerKey(chatID)] = raw
	s.mu.Unlock()
	return nil
}

func PayloadKey(chatID int64, flow Flow) string {
	return fmt.Sprintf("session:%d:%s", chatID, flow)
}

func MarkerKey(chatID int64) string {
	return fmt.Sprintf("session:%d:active", chatID)
}
