package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	updateTimeout = 60
	queueSize     = 64
)

type Handler interface {
	Handle(ctx context.Context, ev Event)
}

// Bot is the Telegram side of the engine: it turns updates into events and
// implements Messenger.
type Bot struct {
	api     *tgbotapi.BotAPI
	logger  *zap.Logger
	workers int
}

var _ Messenger = (*Bot)(nil)

func New(token string, debug bool, workers int, logger *zap.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	botAPI.Debug = debug

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	return &Bot{
		api:     botAPI,
		logger:  logger,
		workers: max(workers, 1),
	}, nil
}

func (b *Bot) RegisterCommands() error {
	commands := make([]tgbotapi.BotCommand, 0, len(Commands))
	for _, c := range Commands {
		commands = append(commands, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	return nil
}

// Start polls updates until ctx is done. Events of one chat always land on
// the same worker, so they are handled in order while other chats proceed
// in parallel.
func (b *Bot) Start(ctx context.Context, h Handler) error {
	b.logger.Info("Starting bot", zap.Int("workers", b.workers))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(u)

	g, gctx := errgroup.WithContext(ctx)
	// queued events are already acknowledged to Telegram, so workers drain
	// them even after shutdown begins
	handleCtx := context.WithoutCancel(ctx)

	queues := make([]chan Event, b.workers)
	for i := range queues {
		queue := make(chan Event, queueSize)
		queues[i] = queue
		g.Go(func() error {
			for ev := range queue {
				h.Handle(handleCtx, ev)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()

		for {
			select {
			case <-gctx.Done():
				b.logger.Info("Shutting down bot")
				b.api.StopReceivingUpdates()
				return nil

			case update, ok := <-updates:
				if !ok {
					return nil
				}
				ev, ok := b.toEvent(update)
				if !ok {
					continue
				}
				queues[shard(ev.ChatID, len(queues))] <- ev
			}
		}
	})

	return g.Wait()
}

func shard(chatID int64, n int) int {
	return int(uint64(chatID) % uint64(n))
}

func (b *Bot) toEvent(update tgbotapi.Update) (Event, bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		ev := Event{
			ID:        update.UpdateID,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Kind:      KindText,
			Text:      msg.Text,
		}
		if msg.From != nil {
			ev.UserID = strconv.FormatInt(msg.From.ID, 10)
		}
		if msg.IsCommand() {
			ev.Kind = KindCommand
			ev.Command = msg.Command()
		}
		return ev, true

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		b.answerCallback(cb.ID)
		if cb.Message == nil {
			return Event{}, false
		}
		return Event{
			ID:        update.UpdateID,
			ChatID:    cb.Message.Chat.ID,
			UserID:    strconv.FormatInt(cb.From.ID, 10),
			MessageID: cb.Message.MessageID,
			Kind:      KindCallback,
			Data:      cb.Data,
		}, true
	}
	return Event{}, false
}

func (b *Bot) answerCallback(id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.String("callback_id", id), zap.Error(err))
	}
}

func (b *Bot) Send(_ context.Context, m Message) (int, error) {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ParseMode = m.ParseMode
	if len(m.Keyboard) > 0 {
		msg.ReplyMarkup = inlineKeyboard(m.Keyboard)
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %d: %w", m.ChatID, err)
	}
	return sent.MessageID, nil
}

func (b *Bot) SendDocument(_ context.Context, chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption

	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send document %q: %w", name, err)
	}
	return nil
}

func (b *Bot) Delete(_ context.Context, chatID int64, messageID int) error {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}
	return nil
}
