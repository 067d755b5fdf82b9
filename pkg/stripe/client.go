// Package stripe holds the configured Stripe API client used for gym member
// subscriptions and webhook verification.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/tatame/tatame-backend/pkg/config"
	"github.com/tatame/tatame-backend/pkg/logger"
)

// Mode is the Stripe account mode the keys belong to.
type Mode string

const (
	ModeTest Mode = "test"
	ModeLive Mode = "live"
)

// secret and restricted keys carry the mode in their prefix.
var keyPrefixes = map[Mode][]string{
	ModeTest: {"sk_test_", "rk_test_"},
	ModeLive: {"sk_live_", "rk_live_"},
}

var (
	ErrMissingAPIKey        = errors.New("stripe: TATAME_STRIPE_API_KEY is not set")
	ErrMissingWebhookSecret = errors.New("stripe: TATAME_STRIPE_SECRET is not set")
)

type Client struct {
	api           *stripe.Client
	mode          Mode
	webhookSecret string
	priceID       string
}

// NewClient validates the billing configuration and builds the API client.
// Callers treat an error as "billing disabled" rather than a fatal condition.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	mode, err := ParseMode(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if !mode.accepts(apiKey) {
		return nil, fmt.Errorf("stripe: %s mode needs one of %v keys", mode, keyPrefixes[mode])
	}

	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrMissingWebhookSecret
	}

	client := &Client{
		api:           stripe.NewClient(apiKey),
		mode:          mode,
		webhookSecret: secret,
		priceID:       strings.TrimSpace(cfg.SubscriptionPriceID),
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"stripeMode":   string(mode),
			"defaultPrice": client.priceID != "",
		})
		logg.Info(ctx, "stripe client ready")
	}
	return client, nil
}

// ParseMode accepts "test" or "live" in any case; empty means test.
func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return ModeTest, nil
	case ModeTest, ModeLive:
		return mode, nil
	default:
		return "", fmt.Errorf("stripe: unknown mode %q (want test or live)", raw)
	}
}

func (m Mode) accepts(key string) bool {
	for _, prefix := range keyPrefixes[m] {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// API exposes the v1 service groups (prices, customers, subscriptions).
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

func (c *Client) Mode() Mode {
	if c == nil {
		return ""
	}
	return c.mode
}

// SigningSecret is the endpoint secret used to verify webhook signatures.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// DefaultPriceID is the membership price used when a subscribe request names none.
func (c *Client) DefaultPriceID() string {
	if c == nil {
		return ""
	}
	return c.priceID
}
