package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tradedesk/internal/domain"
	"tradedesk/internal/realtime"
)

const (
	feedReconnectDelay = 5 * time.Second
	feedReadTimeout    = 90 * time.Second
)

// FeedClient maintains a websocket connection to the upstream
// market/strategy feed and hands every envelope to the relay. The feed
// is system-internal, so its events bypass the auth gate.
type FeedClient struct {
	url    string
	relay  *realtime.Relay
	logger *zap.Logger
}

// NewFeedClient creates a new FeedClient
func NewFeedClient(url string, relay *realtime.Relay, logger *zap.Logger) *FeedClient {
	return &FeedClient{
		url:    url,
		relay:  relay,
		logger: logger,
	}
}

// Run connects to the feed and consumes envelopes until the context is
// cancelled, reconnecting with a fixed delay on any failure.
func (c *FeedClient) Run(ctx context.Context) {
	for {
		if err := c.consume(ctx); err != nil {
			c.logger.Warn("feed connection lost", zap.String("url", c.url), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(feedReconnectDelay):
		}
	}
}

func (c *FeedClient) consume(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	c.logger.Info("connected to upstream feed", zap.String("url", c.url))

	// Unblock the read loop when the context is cancelled
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(feedReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var ev domain.IngestEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			// A single malformed envelope must not halt the stream
			c.logger.Error("malformed feed envelope", zap.Error(err))
			continue
		}

		c.relay.Submit(ev)
	}
}
