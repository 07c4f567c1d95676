package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"ration-bot/internal/session"
	"ration-bot/internal/storage"

	"go.uber.org/zap"
)

func (e *Engine) startCreateOrder(ctx context.Context, t *turn) error {
	e.reply(ctx, t, msgStartOrder)
	e.reply(ctx, t, msgAskDuration)
	t.goTo(session.StepAskDuration)
	return nil
}

func (e *Engine) handleDuration(ctx context.Context, t *turn) error {
	if t.ev.Kind != KindText {
		return nil
	}
	days, err := ParseDuration(t.ev.Text)
	if err != nil {
		e.reply(ctx, t, msgBadDuration)
		return nil
	}

	var order session.CreateOrder
	if err := e.loadPayload(ctx, t, &order); err != nil {
		return err
	}
	order.Duration = days
	return e.askMonth(ctx, t, &order)
}

// askMonth offers the eating months valid right now and remembers them, so
// only these buttons are accepted on resume.
func (e *Engine) askMonth(ctx context.Context, t *turn, order *session.CreateOrder) error {
	months := e.rules.EatingMonths()
	order.Months = order.Months[:0]
	for _, m := range months {
		order.Months = append(order.Months, m.Format(monthLayout))
	}
	order.Month = ""
	if err := e.savePayload(ctx, t, order); err != nil {
		return err
	}

	e.reply(ctx, t, msgAskMonth, monthKeyboard(months)...)
	t.goTo(session.StepAskMonth)
	return nil
}

func (e *Engine) handleMonth(ctx context.Context, t *turn) error {
	var order session.CreateOrder
	if err := e.loadPayload(ctx, t, &order); err != nil {
		return err
	}

	value, ok := strings.CutPrefix(t.ev.Data, monthPrefix)
	if t.ev.Kind != KindCallback || !ok || !slices.Contains(order.Months, value) {
		return e.askMonth(ctx, t, &order)
	}
	month, err := time.ParseInLocation(monthLayout, value, e.rules.Location())
	if err != nil {
		return e.askMonth(ctx, t, &order)
	}

	days := e.rules.EatingDays(month)
	if len(days) == 0 {
		return e.askMonth(ctx, t, &order)
	}

	order.Month = value
	if err := e.savePayload(ctx, t, &order); err != nil {
		return err
	}
	e.reply(ctx, t, msgAskDay, dayKeyboard(days)...)
	t.goTo(session.StepAskDay)
	return nil
}

func (e *Engine) handleDay(ctx context.Context, t *turn) error {
	var order session.CreateOrder
	if err := e.loadPayload(ctx, t, &order); err != nil {
		return err
	}
	loc := e.rules.Location()

	month, err := time.ParseInLocation(monthLayout, order.Month, loc)
	if err != nil {
		return e.askMonth(ctx, t, &order)
	}

	day, ok := e.pickedDay(t.ev, month)
	if !ok {
		days := e.rules.EatingDays(month)
		if len(days) == 0 {
			return e.askMonth(ctx, t, &order)
		}
		e.reply(ctx, t, msgAskDay, dayKeyboard(days)...)
		return nil
	}

	order.EatingDate = day.UTC()
	order.DeliveryDate = day.AddDate(0, 0, -1).UTC()
	if err := e.savePayload(ctx, t, &order); err != nil {
		return err
	}
	e.reply(ctx, t, msgAskFirstName)
	t.goTo(session.StepAskFirstName)
	return nil
}

// pickedDay accepts a day button of month that is still eligible.
func (e *Engine) pickedDay(ev Event, month time.Time) (time.Time, bool) {
	value, ok := strings.CutPrefix(ev.Data, dayPrefix)
	if ev.Kind != KindCallback || !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(dayLayout, value, e.rules.Location())
	if err != nil {
		return time.Time{}, false
	}
	if day.Year() != month.Year() || day.Month() != month.Month() {
		return time.Time{}, false
	}
	return day, e.rules.IsEligibleEatingDay(day)
}

// textAnswer returns the text of a non-blank text event. Blank answers are
// rejected with a hint, other events are ignored.
func (e *Engine) textAnswer(ctx context.Context, t *turn) (string, bool) {
	if t.ev.Kind != KindText {
		return "", false
	}
	if isBlank(t.ev.Text) {
		e.reply(ctx, t, msgEmptyAnswer)
		return "", false
	}
	return t.ev.Text, true
}

// collect stores one free text answer of the create flow and moves on.
func (e *Engine) collect(ctx context.Context, t *turn, set func(*session.CreateOrder, string), prompt string, next session.Step) error {
	text, ok := e.textAnswer(ctx, t)
	if !ok {
		return nil
	}

	var order session.CreateOrder
	if err := e.loadPayload(ctx, t, &order); err != nil {
		return err
	}
	set(&order, text)
	if err := e.savePayload(ctx, t, &order); err != nil {
		return err
	}

	e.reply(ctx, t, prompt)
	t.goTo(next)
	return nil
}

func (e *Engine) handleFirstName(ctx context.Context, t *turn) error {
	return e.collect(ctx, t, func(o *session.CreateOrder, v string) { o.FirstName = v },
		msgAskLastName, session.StepAskLastName)
}

func (e *Engine) handleLastName(ctx context.Context, t *turn) error {
	return e.collect(ctx, t, func(o *session.CreateOrder, v string) { o.LastName = v },
		msgAskPhone, session.StepAskPhone)
}

func (e *Engine) handlePhone(ctx context.Context, t *turn) error {
	if t.ev.Kind != KindText {
		return nil
	}
	phone := strings.TrimSpace(t.ev.Text)
	if !IsValidPhoneNumber(phone) {
		e.reply(ctx, t, msgBadPhone)
		e.reply(ctx, t, msgAskPhone)
		return nil
	}

	return e.collect(ctx, t, func(o *session.CreateOrder, _ string) { o.Phone = phone },
		msgAskAddress, session.StepAskAddress)
}

func (e *Engine) handleAddress(ctx context.Context, t *turn) error {
	return e.collect(ctx, t, func(o *session.CreateOrder, v string) { o.Address = v },
		msgAskComment, session.StepAskComment)
}

func (e *Engine) handleComment(ctx context.Context, t *turn) error {
	if t.ev.Kind != KindText {
		return nil
	}

	var order session.CreateOrder
	if err := e.loadPayload(ctx, t, &order); err != nil {
		return err
	}
	order.Comments = NormalizeComment(t.ev.Text)
	if err := e.savePayload(ctx, t, &order); err != nil {
		return err
	}
	return e.persistOrder(ctx, t, &order)
}

func (e *Engine) persistOrder(ctx context.Context, t *turn, order *session.CreateOrder) error {
	created, err := effect(ctx, e, t, "add_order", func() (storage.Order, error) {
		if order.Duration < 1 || order.DeliveryDate.IsZero() {
			return storage.Order{}, fmt.Errorf("incomplete order: duration %d, delivery %v", order.Duration, order.DeliveryDate)
		}
		return e.repo.AddOrder(ctx, storage.NewOrder{
			UserID:       t.ev.UserID,
			FirstName:    order.FirstName,
			LastName:     order.LastName,
			Phone:        order.Phone,
			Address:      order.Address,
			DeliveryDate: order.DeliveryDate,
			Duration:     order.Duration,
			Comments:     order.Comments,
		})
	})
	if err != nil {
		return fmt.Errorf("add order: %w", err)
	}

	t.log.Info("Order placed",
		zap.Int64("order_id", created.ID),
		zap.Time("delivery_date", created.DeliveryDate),
		zap.Int("duration", created.Duration))

	e.reply(ctx, t, FormatOrder(created, msgOrderAccepted, e.rules.Location()))
	e.finish(ctx, t)
	return nil
}
