package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"casamar/config"
	"casamar/utils"

	"go.uber.org/zap"
)

// Sender delivers asynchronous outcome messages to the guest through the
// messaging layer. Delivery is at-least-once; receivers treat repeats as
// no-ops.
type Sender interface {
	SendText(ctx context.Context, guestID, text string) error
}

// WebhookSender posts outcome messages to a configured webhook. Requests
// are signed with a short-lived service token when the shared secret is
// configured. With no URL configured it only logs, which keeps local
// development quiet.
type WebhookSender struct {
	URL    string
	Client *http.Client
	Logger *zap.Logger
}

// NewWebhookSender builds a sender for the given webhook URL.
func NewWebhookSender(url string, logger *zap.Logger) *WebhookSender {
	return &WebhookSender{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
		Logger: logger,
	}
}

type outboundMessage struct {
	GuestID string `json:"guestId"`
	Message string `json:"message"`
}

func (s *WebhookSender) SendText(ctx context.Context, guestID, text string) error {
	if s.URL == "" {
		s.Logger.Info("outbound message (no webhook configured)",
			zap.String("guestId", guestID), zap.String("message", text))
		return nil
	}

	body, err := json.Marshal(outboundMessage{GuestID: guestID, Message: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if config.AppConfig.ToolAuthSecret != "" {
		token, err := utils.GenerateToolToken("casamar-backend", 5*time.Minute)
		if err != nil {
			return fmt.Errorf("failed to sign notify request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("notify webhook failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify webhook returned status %d", resp.StatusCode)
	}
	return nil
}
