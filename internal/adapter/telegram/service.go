package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tradedesk/internal/domain"
)

// NotificationService pushes closed-trade summaries to a Telegram chat.
// It silently does nothing when not configured.
type NotificationService struct {
	botToken   string
	chatID     string
	enabled    bool
	httpClient *http.Client
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(botToken, chatID string) *NotificationService {
	return &NotificationService{
		botToken: botToken,
		chatID:   chatID,
		enabled:  botToken != "" && chatID != "",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyTradeClosed sends a closed-trade notification to Telegram
func (s *NotificationService) NotifyTradeClosed(trade *domain.Trade) error {
	if !s.enabled {
		return nil // Silently skip if Telegram is not configured
	}

	emoji := "🟢"
	if trade.Status == domain.TradeStatusClosedLoss {
		emoji = "🔴"
	}

	exitPrice := 0.0
	if trade.ExitPrice != nil {
		exitPrice = *trade.ExitPrice
	}

	text := fmt.Sprintf(
		"%s <b>%s</b> %s %s\nEntry: %.2f → Exit: %.2f\nNet PnL: %.2f (%.2f%%)\nR: %.2f | Reason: %s",
		emoji,
		trade.Status,
		trade.Side,
		trade.ScripCode,
		trade.EntryPrice,
		exitPrice,
		trade.NetPnL,
		trade.PnLPercent,
		trade.RMultiple,
		trade.ExitReason,
	)

	return s.send(text)
}

func (s *NotificationService) send(text string) error {
	msg := telegramMessage{
		ChatID:    s.chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)
	resp, err := s.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	return nil
}
