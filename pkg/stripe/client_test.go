package stripe

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatame/tatame-backend/pkg/config"
	"github.com/tatame/tatame-backend/pkg/logger"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":       ModeTest,
		"test":   ModeTest,
		" LIVE ": ModeLive,
	}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseMode("staging")
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "stripe-test", Output: io.Discard})

	t.Run("requires api key", func(t *testing.T) {
		_, err := NewClient(context.Background(), config.StripeConfig{Secret: "whsec_1"}, logg)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("requires webhook secret", func(t *testing.T) {
		_, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_123"}, logg)
		assert.ErrorIs(t, err, ErrMissingWebhookSecret)
	})

	t.Run("rejects key from other mode", func(t *testing.T) {
		_, err := NewClient(context.Background(), config.StripeConfig{
			APIKey: "sk_live_123",
			Secret: "whsec_1",
			Env:    "test",
		}, logg)
		assert.Error(t, err)
	})

	t.Run("builds client", func(t *testing.T) {
		client, err := NewClient(context.Background(), config.StripeConfig{
			APIKey:              "rk_live_123",
			Secret:              " whsec_1 ",
			Env:                 "live",
			SubscriptionPriceID: "price_monthly",
		}, logg)
		require.NoError(t, err)
		assert.NotNil(t, client.API())
		assert.Equal(t, ModeLive, client.Mode())
		assert.Equal(t, "whsec_1", client.SigningSecret())
		assert.Equal(t, "price_monthly", client.DefaultPriceID())
	})
}

func TestNilClientIsSafe(t *testing.T) {
	var client *Client
	assert.Nil(t, client.API())
	assert.Empty(t, client.SigningSecret())
	assert.Empty(t, client.DefaultPriceID())
}
