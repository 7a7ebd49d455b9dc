package service

import (
	"context"
	"errors"
	"testing"

	"formassist/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type fakeCheckoutSessions struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (f *fakeCheckoutSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_123"}, nil
}

func checkoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		SecretKey:  "sk_test",
		PriceID:    "price_123",
		SuccessURL: "https://example.test/success",
		CancelURL:  "https://example.test/cancel",
	}
}

func TestCheckoutDisabled(t *testing.T) {
	s := NewCheckoutService(config.CheckoutConfig{})
	assert.False(t, s.Enabled())
	_, err := s.CreateSession(context.Background(), "en")
	assert.ErrorIs(t, err, ErrCheckoutDisabled)
}

func TestCheckoutCreateSession(t *testing.T) {
	fake := &fakeCheckoutSessions{}
	s := NewCheckoutServiceWith(checkoutConfig(), fake)
	require.True(t, s.Enabled())

	id, err := s.CreateSession(context.Background(), "pl-PL")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", id)

	p := fake.params
	require.NotNil(t, p)
	assert.Equal(t, "payment", *p.Mode)
	assert.Equal(t, "pl", *p.Locale)
	assert.Equal(t, "https://example.test/success", *p.SuccessURL)
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, "price_123", *p.LineItems[0].Price)
	assert.Equal(t, int64(1), *p.LineItems[0].Quantity)
	assert.NotNil(t, p.IdempotencyKey)
}

func TestCheckoutWelshFallsBackToAuto(t *testing.T) {
	fake := &fakeCheckoutSessions{}
	s := NewCheckoutServiceWith(checkoutConfig(), fake)

	_, err := s.CreateSession(context.Background(), "cy")
	require.NoError(t, err)
	assert.Equal(t, "auto", *fake.params.Locale)
}

func TestCheckoutProviderError(t *testing.T) {
	fake := &fakeCheckoutSessions{err: &stripe.Error{Msg: "No such price"}}
	s := NewCheckoutServiceWith(checkoutConfig(), fake)

	_, err := s.CreateSession(context.Background(), "en")
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.Contains(t, err.Error(), "No such price")

	fake.err = errors.New("connection reset")
	_, err = s.CreateSession(context.Background(), "en")
	assert.ErrorIs(t, err, ErrCheckoutFailed)
}
