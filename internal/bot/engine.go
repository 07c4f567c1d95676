package bot

import (
	"context"
	"fmt"

	"ration-bot/internal/session"
	"ration-bot/internal/timerules"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stepHandler func(ctx context.Context, t *turn) error

// Engine drives the conversations of every chat. Each event is routed to the
// step the chat's active flow is waiting on; the flow then persists where it
// stopped and returns.
type Engine struct {
	repo         Repository
	reports      ReportBuilder
	sessions     session.Store
	rules        *timerules.Rules
	out          Messenger
	passwordHash []byte
	logger       *zap.Logger
	newRunID     func() string
	steps        map[session.Step]stepHandler
}

func NewEngine(
	repo Repository,
	reports ReportBuilder,
	sessions session.Store,
	rules *timerules.Rules,
	out Messenger,
	passwordHash string,
	logger *zap.Logger,
) *Engine {
	e := &Engine{
		repo:         repo,
		reports:      reports,
		sessions:     sessions,
		rules:        rules,
		out:          out,
		passwordHash: []byte(passwordHash),
		logger:       logger,
		newRunID:     uuid.NewString,
	}
	e.registerSteps()
	return e
}

func (e *Engine) registerSteps() {
	e.steps = map[session.Step]stepHandler{
		session.StepAskDuration:  e.handleDuration,
		session.StepAskMonth:     e.handleMonth,
		session.StepAskDay:       e.handleDay,
		session.StepAskFirstName: e.handleFirstName,
		session.StepAskLastName:  e.handleLastName,
		session.StepAskPhone:     e.handlePhone,
		session.StepAskAddress:   e.handleAddress,
		session.StepAskComment:   e.handleComment,

		session.StepAskChangeAddress: e.handleChangeAnswer,
		session.StepAskNewAddress:    e.handleNewAddress,

		session.StepAskPassword:  e.handlePassword,
		session.StepAskExportDay: e.handleExportDay,
		session.StepConfirmDrop:  e.handleDropAnswer,
	}
}

// Handle processes one event. Events at or below the last handled id of the
// chat are redeliveries and are dropped.
func (e *Engine) Handle(ctx context.Context, ev Event) {
	log := e.logger.With(zap.Int64("chat_id", ev.ChatID), zap.String("user_id", ev.UserID))

	m, err := e.sessions.Marker(ctx, ev.ChatID)
	if err != nil {
		log.Error("Failed to load session marker", zap.Error(err))
		if _, err := e.out.Send(ctx, Message{ChatID: ev.ChatID, Text: msgFailure}); err != nil {
			log.Warn("Failed to send message", zap.Error(err))
		}
		return
	}
	if ev.ID != 0 && ev.ID <= m.LastEventID {
		log.Debug("Skipping redelivered event", zap.Int("event_id", ev.ID))
		return
	}

	t := newTurn(ev, m, log)
	t.log.Debug("Processing event",
		zap.Int("event_id", ev.ID),
		zap.String("step", string(m.Step)),
		zap.String("command", ev.Command),
		zap.String("data", ev.Data))

	if err := e.dispatch(ctx, t); err != nil {
		e.fail(ctx, t, err)
	}
	e.commit(ctx, t)
}

func (e *Engine) dispatch(ctx context.Context, t *turn) error {
	switch t.ev.Kind {
	case KindCommand:
		return e.handleCommand(ctx, t)
	case KindCallback:
		if flow, ok := menuFlows[t.ev.Data]; ok {
			return e.startFlow(ctx, t, flow)
		}
	}

	if t.marker.Idle() {
		if t.ev.Kind == KindText {
			e.reply(ctx, t, msgUseMenu)
		}
		return nil
	}

	handler, ok := e.steps[t.marker.Step]
	if !ok {
		t.log.Warn("No handler for step", zap.String("step", string(t.marker.Step)))
		e.finish(ctx, t)
		e.reply(ctx, t, msgUseMenu)
		return nil
	}
	return handler(ctx, t)
}

var menuFlows = map[string]session.Flow{
	menuCreate: session.FlowCreateOrder,
	menuChange: session.FlowChangeOrder,
	menuShow:   session.FlowShowOrders,
}

// startFlow overwrites whatever flow the chat had with a fresh run of flow.
func (e *Engine) startFlow(ctx context.Context, t *turn, flow session.Flow) error {
	if err := e.begin(ctx, t, flow); err != nil {
		return err
	}

	switch flow {
	case session.FlowCreateOrder:
		return e.startCreateOrder(ctx, t)
	case session.FlowChangeOrder:
		return e.startChangeOrder(ctx, t)
	case session.FlowShowOrders:
		return e.startShowOrders(ctx, t)
	case session.FlowExportOrders:
		return e.requireAdmin(ctx, t)
	case session.FlowDropOrders, session.FlowDropAdmins:
		return e.startDrop(ctx, t)
	default:
		return fmt.Errorf("unknown flow %q", flow)
	}
}
