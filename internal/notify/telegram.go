package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const telegramAPIHost = "https://api.telegram.org"

// TelegramSender delivers alerts to one chat via the Telegram Bot API.
type TelegramSender struct {
	token   string
	chatID  string
	apiHost string
	client  *http.Client
}

// NewTelegramSender builds a sender for the given bot token and chat ID.
func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		token:   token,
		chatID:  chatID,
		apiHost: telegramAPIHost,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// telegramMessage is the sendMessage request body. Link previews are disabled
// so market URLs in alert bodies do not expand into cards.
type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Deliver posts the alert to the configured chat, title bolded in Markdown.
func (t *TelegramSender) Deliver(ctx context.Context, alert Alert) error {
	msg := telegramMessage{
		ChatID:                t.chatID,
		Text:                  fmt.Sprintf("*%s*\n%s", alert.Title, alert.Body),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiHost, t.token)
	if err := postJSON(ctx, t.client, url, msg); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

// Name identifies the channel.
func (t *TelegramSender) Name() string {
	return "telegram"
}
