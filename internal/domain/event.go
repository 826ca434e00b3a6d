package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IngestEvent is the envelope received from the upstream market/strategy
// feed. The payload schema varies by topic and is opaque beyond the
// fields needed to drive ledger operations.
type IngestEvent struct {
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Ingest topic constants. Candles, scores and signals are broadcast
// market data; executions drive ledger transitions.
const (
	TopicCandles    = "market.candles"
	TopicScores     = "market.scores"
	TopicSignals    = "market.signals"
	TopicExecutions = "executions"
)

// ExecutionAction constants
const (
	ExecutionActionFill  = "FILL"
	ExecutionActionClose = "CLOSE"
)

// ExecutionPayload is the payload of an execution-confirmation event.
// EventID is a ULID assigned by the upstream feed; it is the stable
// identifier redeliveries are keyed by.
type ExecutionPayload struct {
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	OrderID    uuid.UUID `json:"order_id,omitempty"`
	TradeID    uuid.UUID `json:"trade_id,omitempty"`
	Price      float64   `json:"price"`
	ExitReason string    `json:"exit_reason,omitempty"`
	At         time.Time `json:"at"`
}

// CandlePayload carries the fields of a market candle event the core
// needs; everything else in the raw payload is passed through untouched.
type CandlePayload struct {
	ScripCode string  `json:"scrip_code"`
	Close     float64 `json:"close"`
}

// StateEvent is an outbound state delta pushed to subscribed sessions
type StateEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// StateEvent type constants
const (
	EventTypeOrderUpdate  = "order_update"
	EventTypeTradeUpdate  = "trade_update"
	EventTypeWalletUpdate = "wallet_update"
	EventTypeMarketData   = "market_data"
)

// EventPublisher fans resulting state deltas out to live sessions.
// Implementations hold no ownership over ledger entities.
type EventPublisher interface {
	// PublishUser delivers an event to every live session of a user
	PublishUser(userID uuid.UUID, event *StateEvent)

	// PublishBroadcast delivers an event to every session subscribed
	// to the given shared topic
	PublishBroadcast(topic string, event *StateEvent)
}
