package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tatame/tatame-backend/pkg/config"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"go.uber.org/multierr"
)

const (
	defaultGatewayURL           = "https://exp.host/--/api/v2/push/send"
	maxMessagesPerRequest       = 100
	responseBodyReadLimit int64 = 1024
)

var errGatewayRequired = errors.New("push gateway url is required")

// Message is one notification addressed to a single device token.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Ticket is the gateway's per-message receipt.
type Ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the gateway accepted the message.
func (t Ticket) OK() bool {
	return t.Status == "ok"
}

// Client posts messages to an Expo-compatible push gateway.
type Client struct {
	httpClient  *http.Client
	gatewayURL  string
	accessToken string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a push client from configuration.
func NewClient(cfg config.PushConfig, opts ...Option) (*Client, error) {
	gateway := strings.TrimSpace(cfg.GatewayURL)
	if gateway == "" {
		gateway = defaultGatewayURL
	}
	if !strings.HasPrefix(gateway, "http") {
		return nil, errGatewayRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		gatewayURL:  gateway,
		accessToken: strings.TrimSpace(cfg.AccessToken),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// IsDeviceToken reports whether token looks like an Expo device token.
func IsDeviceToken(token string) bool {
	token = strings.TrimSpace(token)
	if !strings.HasSuffix(token, "]") {
		return false
	}
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

// Send delivers messages in gateway-sized batches. Tickets are returned for
// every batch that reached the gateway; rejected tickets and failed batches
// are combined into the returned error.
func (c *Client) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "push client not configured")
	}
	var (
		tickets []Ticket
		errs    error
	)
	for start := 0; start < len(messages); start += maxMessagesPerRequest {
		end := min(start+maxMessagesPerRequest, len(messages))
		batch, err := c.sendBatch(ctx, messages[start:end])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for i, ticket := range batch {
			if !ticket.OK() {
				errs = multierr.Append(errs, fmt.Errorf("push to %s rejected: %s", messages[start+i].To, ticket.Message))
			}
		}
		tickets = append(tickets, batch...)
	}
	if errs != nil {
		return tickets, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "push delivery failed")
	}
	return tickets, nil
}

func (c *Client) sendBatch(ctx context.Context, messages []Message) ([]Ticket, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute push request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, fmt.Errorf("push gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var apiResp struct {
		Data []Ticket `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}
	if len(apiResp.Data) != len(messages) {
		return nil, fmt.Errorf("push gateway returned %d tickets for %d messages", len(apiResp.Data), len(messages))
	}
	return apiResp.Data, nil
}
