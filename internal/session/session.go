// Package session describes what a chat remembers between turns: one payload
// per flow kind and a marker naming the flow that is currently waiting for
// input together with its resume step.
package session

import (
	"context"
	"encoding/json"
	"time"

	"ration-bot/internal/storage"
)

type Flow string

const (
	FlowNone         Flow = ""
	FlowCreateOrder  Flow = "createOrder"
	FlowChangeOrder  Flow = "changeOrder"
	FlowShowOrders   Flow = "showOrders"
	FlowExportOrders Flow = "exportOrders"
	FlowDropOrders   Flow = "dropOrders"
	FlowDropAdmins   Flow = "dropAdmins"
)

var Flows = []Flow{
	FlowCreateOrder,
	FlowChangeOrder,
	FlowShowOrders,
	FlowExportOrders,
	FlowDropOrders,
	FlowDropAdmins,
}

// Step is the resume label of a suspended flow.
type Step string

const (
	StepNone Step = ""

	StepAskDuration  Step = "ask_duration"
	StepAskMonth     Step = "ask_month"
	StepAskDay       Step = "ask_day"
	StepAskFirstName Step = "ask_first_name"
	StepAskLastName  Step = "ask_last_name"
	StepAskPhone     Step = "ask_phone"
	StepAskAddress   Step = "ask_address"
	StepAskComment   Step = "ask_comment"

	StepAskChangeAddress Step = "ask_change_address"
	StepAskNewAddress    Step = "ask_new_address"

	StepAskPassword  Step = "ask_password"
	StepAskExportDay Step = "ask_export_day"
	StepConfirmDrop  Step = "confirm_drop"
)

// Marker is the per-chat record of the suspended flow. It survives flow
// completion as an idle marker so that redelivered events are still
// recognised.
type Marker struct {
	Flow            Flow                       `json:"flow"`
	Step            Step                       `json:"step"`
	RunID           string                     `json:"run_id,omitempty"`
	LastEventID     int                        `json:"last_event_id,omitempty"`
	PromptMessageID int                        `json:"prompt_message_id,omitempty"`
	// Effects journals side effects of the event EffectsEventID while it is
	// being handled.
	Effects         map[string]json.RawMessage `json:"effects,omitempty"`
	EffectsEventID  int                        `json:"effects_event_id,omitempty"`
	StartedAt       time.Time                  `json:"started_at"`
}

func (m *Marker) Idle() bool {
	return m == nil || m.Flow == FlowNone
}

// CreateOrder collects the fields of a new order.
type CreateOrder struct {
	Duration     int       `json:"duration,omitempty"`
	Months       []string  `json:"months,omitempty"`
	Month        string    `json:"month,omitempty"`
	EatingDate   time.Time `json:"eating_date"`
	DeliveryDate time.Time `json:"delivery_date"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Comments     string    `json:"comments,omitempty"`
}

// LastOrder keeps the order fetched by the change and show flows.
type LastOrder struct {
	Order *storage.Order `json:"order,omitempty"`
}

type ExportOrders struct {
	DayOffset int `json:"day_offset"`
}

type Drop struct {
	Confirmed bool `json:"confirmed"`
}

// Store persists flow payloads per (chat, flow) and the chat's marker.
type Store interface {
	// Get decodes the payload into dst. It reports false and leaves dst
	// untouched when nothing was stored yet.
	Get(ctx context.Context, chatID int64, flow Flow, dst any) (bool, error)
	Put(ctx context.Context, chatID int64, flow Flow, payload any) error
	// Reset puts the flow's initial payload back.
	Reset(ctx context.Context, chatID int64, flow Flow) error

	Marker(ctx context.Context, chatID int64) (*Marker, error)
	SetMarker(ctx context.Context, chatID int64, m *Marker) error
}

// Initial returns the empty payload of a flow.
func Initial(flow Flow) any {
	switch flow {
	case FlowCreateOrder:
		return &CreateOrder{}
	case FlowChangeOrder, FlowShowOrders:
		return &LastOrder{}
	case FlowExportOrders:
		return &ExportOrders{}
	case FlowDropOrders, FlowDropAdmins:
		return &Drop{}
	default:
		return struct{}{}
	}
}
