package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DiscordSender delivers alerts to a Discord channel webhook.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSender builds a sender for the given webhook URL.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// discordMessage is the webhook execute request body. The username overrides
// the webhook's default so alerts are attributable at a glance.
type discordMessage struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

// Deliver posts the alert to the webhook, title bolded in Discord markdown.
// Discord answers 204 No Content on success.
func (d *DiscordSender) Deliver(ctx context.Context, alert Alert) error {
	msg := discordMessage{
		Content:  fmt.Sprintf("**%s**\n%s", alert.Title, alert.Body),
		Username: "polykalshi",
	}

	if err := postJSON(ctx, d.client, d.webhookURL, msg); err != nil {
		return fmt.Errorf("discord: %w", err)
	}
	return nil
}

// Name identifies the channel.
func (d *DiscordSender) Name() string {
	return "discord"
}
