package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ration-bot/internal/session"
	"ration-bot/pkg/redis"
)

// SessionStore keeps conversation sessions in Redis so a restarted process
// resumes every chat at the prompt it was waiting on.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore with zero ttl never expires sessions.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, chatID int64, flow session.Flow, dst any) (bool, error) {
	data, found, err := s.client.Get(ctx, session.PayloadKey(chatID, flow))
	if err != nil {
		return false, fmt.Errorf("get %s session: %w", flow, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s session: %w", flow, err)
	}
	return true, nil
}

func (s *SessionStore) Put(ctx context.Context, chatID int64, flow session.Flow, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s session: %w", flow, err)
	}
	if err := s.client.Set(ctx, session.PayloadKey(chatID, flow), data, s.ttl); err != nil {
		return fmt.Errorf("save %s session: %w", flow, err)
	}
	return nil
}

func (s *SessionStore) Reset(ctx context.Context, chatID int64, flow session.Flow) error {
	return s.Put(ctx, chatID, flow, session.Initial(flow))
}

func (s *SessionStore) Marker(ctx context.Context, chatID int64) (*session.Marker, error) {
	data, found, err := s.client.Get(ctx, session.MarkerKey(chatID))
	if err != nil {
		return nil, fmt.Errorf("get marker: %w", err)
	}
	if !found {
		return &session.Marker{}, nil
	}

	var m session.Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal marker: %w", err)
	}
	return &m, nil
}

func (s *SessionStore) SetMarker(ctx context.Context, chatID int64, m *session.Marker) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}
	if err := s.client.Set(ctx, session.MarkerKey(chatID), data, s.ttl); err != nil {
		return fmt.Errorf("save marker: %w", err)
	}
	return nil
}
