package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradedesk/internal/domain"
	"tradedesk/internal/usecase"
)

// Relay consumes the ordered ingest stream from the external
// market/strategy feed, maps execution confirmations onto ledger
// operations and fans broadcast events out to subscribed sessions.
// Delivery from upstream is at-least-once; redeliveries are absorbed
// by the ledger's idempotent transitions.
type Relay struct {
	ledger  *usecase.LedgerService
	hub     *Hub
	prices  *PriceCache
	logger  *zap.Logger
	workers int
	events  chan domain.IngestEvent
}

// NewRelay creates a new Relay with a bounded pool of consumer workers
func NewRelay(logger *zap.Logger, ledger *usecase.LedgerService, hub *Hub, prices *PriceCache, workers int) *Relay {
	if workers <= 0 {
		workers = 1
	}
	return &Relay{
		ledger:  ledger,
		hub:     hub,
		prices:  prices,
		logger:  logger,
		workers: workers,
		events:  make(chan domain.IngestEvent, 64),
	}
}

// Start launches the consumer workers and blocks until the context is
// cancelled and all workers have drained.
func (r *Relay) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-r.events:
					// Per-event failures must not halt the stream
					if err := r.handle(ctx, ev); err != nil {
						r.logger.Error("ingest event failed",
							zap.Int("worker", worker),
							zap.String("topic", ev.Topic),
							zap.String("key", ev.Key),
							zap.Error(err))
					}
				}
			}
		}(i)
	}
	wg.Wait()
}

// Submit hands an ingest event to the worker pool
func (r *Relay) Submit(ev domain.IngestEvent) {
	r.events <- ev
}

func (r *Relay) handle(ctx context.Context, ev domain.IngestEvent) error {
	switch ev.Topic {
	case domain.TopicExecutions:
		return r.handleExecution(ctx, ev)
	case domain.TopicCandles:
		var candle domain.CandlePayload
		if err := json.Unmarshal(ev.Payload, &candle); err != nil {
			return fmt.Errorf("malformed candle payload: %w", err)
		}
		if candle.ScripCode != "" && candle.Close > 0 {
			r.prices.Set(candle.ScripCode, candle.Close)
		}
		r.broadcast(ev)
		return nil
	case domain.TopicScores, domain.TopicSignals:
		r.broadcast(ev)
		return nil
	default:
		r.logger.Debug("ignoring unknown ingest topic", zap.String("topic", ev.Topic))
		return nil
	}
}

// handleExecution drives ledger transitions from an execution
// confirmation. A redelivered event that finds its entity already in
// the target state is treated as applied, not as a failure.
func (r *Relay) handleExecution(ctx context.Context, ev domain.IngestEvent) error {
	var exec domain.ExecutionPayload
	if err := json.Unmarshal(ev.Payload, &exec); err != nil {
		return fmt.Errorf("malformed execution payload: %w", err)
	}

	at := exec.At
	if at.IsZero() {
		at = ev.Timestamp
	}

	var err error
	switch exec.Action {
	case domain.ExecutionActionFill:
		_, err = r.ledger.FillOrder(ctx, exec.OrderID, exec.Price, at)
	case domain.ExecutionActionClose:
		_, err = r.ledger.CloseTrade(ctx, exec.TradeID, exec.Price, at, exec.ExitReason)
	default:
		return fmt.Errorf("unknown execution action %q", exec.Action)
	}

	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			r.logger.Debug("execution event arrived for a terminal entity, dropping",
				zap.String("event_id", exec.EventID),
				zap.String("action", exec.Action))
			return nil
		}
		return fmt.Errorf("execution %s failed: %w", exec.EventID, err)
	}
	return nil
}

// broadcast republishes a market-wide ingest event to the shared topic
func (r *Relay) broadcast(ev domain.IngestEvent) {
	r.hub.PublishBroadcast(ev.Topic, &domain.StateEvent{
		Type:      domain.EventTypeMarketData,
		Data:      map[string]interface{}{"topic": ev.Topic, "key": ev.Key, "payload": ev.Payload},
		Timestamp: time.Now(),
	})
}
