package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ration-bot/internal/session"
	"ration-bot/internal/storage"

	"go.uber.org/zap"
)

// turn is the processing of one event. Effects performed while handling it
// are journaled under the marker the event was dispatched with, so a
// redelivery of the same event replays their results instead of repeating
// them.
type turn struct {
	ev      Event
	start   session.Marker
	marker  *session.Marker
	journal map[string]json.RawMessage
	seq     int
	log     *zap.Logger
}

func newTurn(ev Event, m *session.Marker, log *zap.Logger) *turn {
	t := &turn{
		ev:     ev,
		start:  *m,
		marker: m,
		log:    log,
	}
	if m.EffectsEventID == ev.ID {
		t.journal = m.Effects
	}
	if t.journal == nil {
		t.journal = make(map[string]json.RawMessage)
	}
	if !m.Idle() {
		t.log = t.log.With(zap.String("flow", string(m.Flow)), zap.String("run_id", m.RunID))
	}
	return t
}

func (t *turn) chatID() int64 { return t.ev.ChatID }

func (t *turn) goTo(step session.Step) {
	t.marker.Step = step
}

// effect runs fn once per turn position. A result recorded by an earlier
// attempt at the same event is returned without calling fn. Errors are not
// recorded.
func effect[T any](ctx context.Context, e *Engine, t *turn, name string, fn func() (T, error)) (T, error) {
	t.seq++
	key := fmt.Sprintf("%02d:%s", t.seq, name)

	var result T
	if raw, ok := t.journal[key]; ok {
		if err := json.Unmarshal(raw, &result); err == nil {
			t.log.Debug("Replaying recorded effect", zap.String("effect", key))
			return result, nil
		}
	}

	result, err := fn()
	if err != nil {
		return result, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.log.Error("Failed to encode effect result", zap.String("effect", key), zap.Error(err))
		return result, nil
	}
	t.journal[key] = raw

	checkpoint := t.start
	checkpoint.Effects = t.journal
	checkpoint.EffectsEventID = t.ev.ID
	if err := e.sessions.SetMarker(ctx, t.chatID(), &checkpoint); err != nil {
		t.log.Error("Failed to record effect", zap.String("effect", key), zap.Error(err))
	}
	return result, nil
}

// reply sends an HTML message once per turn position and returns its id.
// Delivery failures are logged and never abort the flow.
func (e *Engine) reply(ctx context.Context, t *turn, text string, keyboard ...[]Button) int {
	msg := Message{ChatID: t.chatID(), Text: text, ParseMode: parseModeHTML, Keyboard: keyboard}
	return e.send(ctx, t, msg)
}

func (e *Engine) send(ctx context.Context, t *turn, msg Message) int {
	id, _ := effect(ctx, e, t, "send", func() (int, error) {
		id, err := e.out.Send(ctx, msg)
		if err != nil {
			t.log.Warn("Failed to send message", zap.Error(err))
			return 0, nil
		}
		return id, nil
	})
	return id
}

func (e *Engine) deleteMessage(ctx context.Context, t *turn, messageID int) {
	if messageID == 0 {
		return
	}
	_, _ = effect(ctx, e, t, "delete", func() (bool, error) {
		if err := e.out.Delete(ctx, t.chatID(), messageID); err != nil {
			t.log.Warn("Failed to delete message", zap.Int("message_id", messageID), zap.Error(err))
			return false, nil
		}
		return true, nil
	})
}

// begin abandons whatever flow the chat had and starts flow from its
// initial payload.
func (e *Engine) begin(ctx context.Context, t *turn, flow session.Flow) error {
	if !t.marker.Idle() && t.marker.Flow != flow {
		t.log.Info("Abandoning flow", zap.String("step", string(t.marker.Step)))
	}
	if err := e.sessions.Reset(ctx, t.chatID(), flow); err != nil {
		return fmt.Errorf("reset %s session: %w", flow, err)
	}

	t.marker = &session.Marker{
		Flow:      flow,
		RunID:     e.newRunID(),
		StartedAt: e.rules.Now().UTC(),
	}
	t.log = e.logger.With(
		zap.Int64("chat_id", t.ev.ChatID),
		zap.String("user_id", t.ev.UserID),
		zap.String("flow", string(flow)),
		zap.String("run_id", t.marker.RunID),
	)
	t.log.Info("Flow started")
	return nil
}

// finish puts the flow payload back to its initial shape and leaves the
// chat idle.
func (e *Engine) finish(ctx context.Context, t *turn) {
	if t.marker.Idle() {
		return
	}
	if err := e.sessions.Reset(ctx, t.chatID(), t.marker.Flow); err != nil {
		t.log.Error("Failed to reset session", zap.Error(err))
	}
	t.log.Info("Flow finished", zap.String("step", string(t.marker.Step)))
	t.marker = &session.Marker{}
}

// fail reports err to the user and resets the flow so it can be started
// again from scratch.
func (e *Engine) fail(ctx context.Context, t *turn, err error) {
	var storageErr *storage.StorageError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		t.log.Info("Nothing found", zap.Error(err))
		e.reply(ctx, t, msgNotFound)
	case errors.As(err, &storageErr):
		t.log.Error("Storage failure", zap.String("op", storageErr.Op), zap.Error(storageErr.Err))
		e.reply(ctx, t, msgFailure)
	default:
		t.log.Error("Failed to handle event", zap.Error(err))
		e.reply(ctx, t, msgFailure)
	}
	e.finish(ctx, t)
}

// commit stores the marker the turn ended with. The journal is dropped: it
// only guards redeliveries of an event that did not complete.
func (e *Engine) commit(ctx context.Context, t *turn) {
	t.marker.Effects = nil
	t.marker.EffectsEventID = 0
	t.marker.LastEventID = max(t.start.LastEventID, t.ev.ID)
	if err := e.sessions.SetMarker(ctx, t.chatID(), t.marker); err != nil {
		t.log.Error("Failed to save marker", zap.Error(err))
	}
}

func (e *Engine) loadPayload(ctx context.Context, t *turn, dst any) error {
	if _, err := e.sessions.Get(ctx, t.chatID(), t.marker.Flow, dst); err != nil {
		return fmt.Errorf("load %s session: %w", t.marker.Flow, err)
	}
	return nil
}

func (e *Engine) savePayload(ctx context.Context, t *turn, payload any) error {
	if err := e.sessions.Put(ctx, t.chatID(), t.marker.Flow, payload); err != nil {
		return fmt.Errorf("save %s session: %w", t.marker.Flow, err)
	}
	return nil
}
