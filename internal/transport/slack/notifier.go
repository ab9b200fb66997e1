// Package slack posts failure summaries to an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Notifier sends alerts as a single mrkdwn section block.
// With no webhook URL configured it only logs the payload.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewNotifier creates a webhook notifier. client may be nil.
func NewNotifier(webhookURL string, client *http.Client, logger *zap.Logger) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Notifier{webhookURL: webhookURL, client: client, logger: logger}
}

type textObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type block struct {
	Type string     `json:"type"`
	Text textObject `json:"text"`
}

type payload struct {
	Blocks []block `json:"blocks"`
}

// Payload builds the webhook body: one section with the summary in a code fence.
func Payload(summary string) ([]byte, error) {
	return json.Marshal(payload{Blocks: []block{{
		Type: "section",
		Text: textObject{Type: "mrkdwn", Text: "```" + summary + "```"},
	}}})
}

// Alert implements dataset.Alerter.
func (n *Notifier) Alert(ctx context.Context, summary string) error {
	body, err := Payload(summary)
	if err != nil {
		return fmt.Errorf("slack: encode payload: %w", err)
	}

	if n.webhookURL == "" {
		n.logger.Warn("Slack webhook not configured, alert logged only", zap.ByteString("payload", body))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	n.logger.Info("Alert sent")
	return nil
}
