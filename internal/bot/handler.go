package bot

import (
	"context"

	"ration-bot/internal/session"

	"go.uber.org/zap"
)

type CommandInfo struct {
	Name        string
	Description string
}

// Commands is the command list shown by the chat client.
var Commands = []CommandInfo{
	{"start", "Заказы 🛍️"},
	{"order", "Новый заказ 🍱"},
	{"change", "Изменить адрес доставки ✏️"},
	{"orders", "Мой последний заказ 📋"},
	{"export", "Скачать xls файл 💾"},
	{"cancel", "Отменить текущее действие"},
	{"help", "Справка"},
}

var commandFlows = map[string]session.Flow{
	"order":       session.FlowCreateOrder,
	"change":      session.FlowChangeOrder,
	"orders":      session.FlowShowOrders,
	"export":      session.FlowExportOrders,
	"drop_orders": session.FlowDropOrders,
	"drop_admins": session.FlowDropAdmins,
}

func (e *Engine) handleCommand(ctx context.Context, t *turn) error {
	if flow, ok := commandFlows[t.ev.Command]; ok {
		return e.startFlow(ctx, t, flow)
	}

	switch t.ev.Command {
	case "start":
		e.reply(ctx, t, msgMenu, menuKeyboard()...)
	case "help":
		e.reply(ctx, t, msgHelp)
	case "cancel":
		e.handleCancel(ctx, t)
	default:
		e.reply(ctx, t, msgUnknown)
	}
	return nil
}

func (e *Engine) handleCancel(ctx context.Context, t *turn) {
	if t.marker.Idle() {
		e.reply(ctx, t, msgNoFlow)
		return
	}
	t.log.Info("Flow cancelled by user", zap.String("step", string(t.marker.Step)))
	e.finish(ctx, t)
	e.reply(ctx, t, msgCancelled)
}
