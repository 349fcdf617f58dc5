package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/logger"
)

const maxBatchSize = 100

var errLoggerRequired = errors.New("expo logger is required")

// Message is a single Expo push notification.
type Message struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
	Sound string         `json:"sound,omitempty"`
}

// Ticket is Expo's per-message receipt.
type Ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type pushResponse struct {
	Data []Ticket `json:"data"`
}

// Client posts push notifications to the Expo push service.
type Client struct {
	httpClient *http.Client
	pushURL    string
	logger     *logger.Logger
}

// NewClient builds the Expo push client.
func NewClient(cfg config.ExpoConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	pushURL := strings.TrimSpace(cfg.PushURL)
	if pushURL == "" {
		pushURL = "https://exp.host/--/api/v2/push/send"
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		pushURL:    pushURL,
		logger:     logg,
	}, nil
}

// Send delivers the batch of messages. Messages without a push token are
// dropped. Tickets come back in request order for the messages actually sent.
func (c *Client) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	batch := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if strings.TrimSpace(msg.To) == "" {
			continue
		}
		batch = append(batch, msg)
	}
	if len(batch) == 0 {
		return nil, nil
	}
	if len(batch) > maxBatchSize {
		return nil, fmt.Errorf("expo batch exceeds %d messages", maxBatchSize)
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encoding expo batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building expo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expo push call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading expo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expo push returned status %d", resp.StatusCode)
	}

	var decoded pushResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding expo response: %w", err)
	}

	if c.logger != nil {
		logCtx := c.logger.WithFields(ctx, map[string]any{
			"sent":    len(batch),
			"tickets": len(decoded.Data),
		})
		c.logger.Info(logCtx, "expo push batch delivered")
	}

	return decoded.Data, nil
}
