package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramSender posts messages through the Bot API sendMessage method.
type TelegramSender struct {
	http   *resty.Client
	token  string
	chatID string
}

func NewTelegramSender(cfg Config) *TelegramSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramSender{
		http: resty.New().
			SetBaseURL(cfg.TelegramBaseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		token:  cfg.TelegramBotToken,
		chatID: cfg.TelegramChatID,
	}
}

func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	var out sendMessageResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetPathParam("token", t.token).
		SetBody(sendMessageRequest{
			ChatID:    t.chatID,
			Text:      fmt.Sprintf("*%s*\n%s", title, message),
			ParseMode: "Markdown",
		}).
		SetResult(&out).
		SetError(&out).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode(), out.Description)
	}
	return nil
}

func (t *TelegramSender) Name() string {
	return "telegram"
}
