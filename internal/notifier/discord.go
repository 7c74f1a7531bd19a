package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DiscordSink posts messages to a Discord webhook. An optional role ID is
// pinged ahead of the message.
type DiscordSink struct {
	WebhookURL string
	RoleID     string
	Client     *http.Client
}

// NewDiscordSink creates a webhook sink.
func NewDiscordSink(webhookURL, roleID string) *DiscordSink {
	return &DiscordSink{
		WebhookURL: webhookURL,
		RoleID:     roleID,
		Client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *DiscordSink) Name() string { return "discord" }

func (d *DiscordSink) Send(ctx context.Context, title, body string) error {
	content := fmt.Sprintf("**%s**\n%s", title, body)
	if d.RoleID != "" {
		content = fmt.Sprintf("<@&%s> %s", d.RoleID, content)
	}

	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", d.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	// Discord returns 204 on success, 200 with ?wait=true.
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord webhook: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
