package bot

import (
	"context"
	"fmt"

	"ration-bot/internal/session"
	"ration-bot/internal/storage"

	"go.uber.org/zap"
)

func (e *Engine) latestOrder(ctx context.Context, t *turn) (storage.Order, error) {
	order, err := effect(ctx, e, t, "find_latest_order", func() (storage.Order, error) {
		return e.repo.FindLatestOrderByUser(ctx, t.ev.UserID)
	})
	if err != nil {
		return storage.Order{}, fmt.Errorf("find latest order: %w", err)
	}
	if err := e.savePayload(ctx, t, session.LastOrder{Order: &order}); err != nil {
		return storage.Order{}, err
	}
	return order, nil
}

func (e *Engine) startShowOrders(ctx context.Context, t *turn) error {
	order, err := e.latestOrder(ctx, t)
	if err != nil {
		return err
	}
	e.reply(ctx, t, FormatOrder(order, msgLastOrder, e.rules.Location()))
	e.finish(ctx, t)
	return nil
}

func (e *Engine) startChangeOrder(ctx context.Context, t *turn) error {
	order, err := e.latestOrder(ctx, t)
	if err != nil {
		return err
	}
	e.reply(ctx, t, FormatOrder(order, msgLastOrder, e.rules.Location()))
	e.reply(ctx, t, msgAskChange, yesNoKeyboard()...)
	t.goTo(session.StepAskChangeAddress)
	return nil
}

// yesNo reads an answer button. Anything else keeps the question open.
func yesNo(ev Event) (answer, ok bool) {
	if ev.Kind != KindCallback {
		return false, false
	}
	switch ev.Data {
	case answerYes:
		return true, true
	case answerNo:
		return false, true
	}
	return false, false
}

func (e *Engine) handleChangeAnswer(ctx context.Context, t *turn) error {
	change, ok := yesNo(t.ev)
	if !ok {
		return nil
	}
	if !change {
		e.reply(ctx, t, msgKeepAddress)
		e.finish(ctx, t)
		return nil
	}

	order, err := e.orderToChange(ctx, t)
	if err != nil || order == nil {
		return err
	}
	e.reply(ctx, t, msgAskNewAddress)
	t.goTo(session.StepAskNewAddress)
	return nil
}

func (e *Engine) handleNewAddress(ctx context.Context, t *turn) error {
	address, ok := e.textAnswer(ctx, t)
	if !ok {
		return nil
	}

	order, err := e.orderToChange(ctx, t)
	if err != nil || order == nil {
		return err
	}

	updated, err := effect(ctx, e, t, "update_address", func() (storage.Order, error) {
		return e.repo.UpdateDeliveryAddress(ctx, order.ID, address)
	})
	if err != nil {
		return fmt.Errorf("update address of order %d: %w", order.ID, err)
	}

	t.log.Info("Delivery address changed", zap.Int64("order_id", updated.ID))
	e.reply(ctx, t, FormatOrder(updated, msgAddressChanged, e.rules.Location()))
	e.finish(ctx, t)
	return nil
}

// orderToChange loads the order fetched at the start of the flow and checks
// the change deadline again, since the flow may have waited past it. A nil
// order without error means the flow has already been closed.
func (e *Engine) orderToChange(ctx context.Context, t *turn) (*storage.Order, error) {
	var last session.LastOrder
	if err := e.loadPayload(ctx, t, &last); err != nil {
		return nil, err
	}
	if last.Order == nil {
		return nil, storage.ErrNotFound
	}

	if !e.rules.CanModify(last.Order.DeliveryDate) {
		t.log.Info("Change deadline passed", zap.Int64("order_id", last.Order.ID))
		e.reply(ctx, t, fmt.Sprintf(msgTooLateToChange, e.rules.ChangeCutoffHour()))
		e.finish(ctx, t)
		return nil, nil
	}
	return last.Order, nil
}
