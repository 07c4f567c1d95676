package bot

import (
	"context"

	"ration-bot/internal/report"
	"ration-bot/internal/storage"
)

type EventKind int

const (
	KindText EventKind = iota
	KindCommand
	KindCallback
)

// Event is one inbound turn of a chat, already stripped of transport details.
type Event struct {
	ID        int
	ChatID    int64
	UserID    string
	MessageID int
	Kind      EventKind
	Command   string
	Text      string
	Data      string
}

const parseModeHTML = "HTML"

type Button struct {
	Text string
	Data string
}

// Message is an outbound text with optional inline buttons, one slice per row.
type Message struct {
	ChatID    int64
	Text      string
	ParseMode string
	Keyboard  [][]Button
}

type Messenger interface {
	Send(ctx context.Context, msg Message) (int, error)
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
}

type Repository interface {
	AddOrder(ctx context.Context, o storage.NewOrder) (storage.Order, error)
	FindLatestOrderByUser(ctx context.Context, userID string) (storage.Order, error)
	UpdateDeliveryAddress(ctx context.Context, orderID int64, address string) (storage.Order, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	AddAdmin(ctx context.Context, userID string) error
	DropAllOrders(ctx context.Context) error
	DropAllAdmins(ctx context.Context) error
}

type ReportBuilder interface {
	BuildDailyReport(ctx context.Context, dayOffset int) (*report.Report, error)
}
