// Package notify delivers audit notifications to the Telegram bot relay.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"secretstore-api/internal/observability/logger"

	"go.uber.org/zap"
)

// Message is the payload the bot relay expects on POST /send-message.
// Field names are part of the relay contract.
type Message struct {
	Username      string `json:"username"`
	WorkspaceName string `json:"workspace_name"`
	Timestamp     string `json:"timestamp"`
	Subject       string `json:"subject"`
	Action        string `json:"action"`
	ChatID        string `json:"chatId"`
}

// Relay posts notification messages to the bot service. Delivery is best
// effort; callers treat errors as non-fatal.
type Relay struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewRelay(baseURL string, client *http.Client, log *logger.Logger) *Relay {
	return &Relay{
		baseURL: baseURL,
		client:  client,
		log:     log,
	}
}

// Send posts one message to the relay.
func (r *Relay) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal relay message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/send-message", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to relay: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	r.log.Debug(ctx, "notification dispatched",
		logger.Module("notify"),
		logger.Action("send"),
		zap.String("chat_id", msg.ChatID),
		zap.String("event_action", msg.Action),
	)
	return nil
}
