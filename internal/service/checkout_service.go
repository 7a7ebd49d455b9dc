package service

import (
	"context"
	"errors"
	"fmt"

	"formassist/internal/config"
	"formassist/internal/form"
	"formassist/internal/model"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// CheckoutSessions creates Stripe checkout sessions
type CheckoutSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// CheckoutService creates payment sessions. Without a secret key every call
// fails with ErrCheckoutDisabled.
type CheckoutService struct {
	config   config.CheckoutConfig
	sessions CheckoutSessions
}

// NewCheckoutService creates a checkout service backed by the Stripe API
func NewCheckoutService(cfg config.CheckoutConfig) *CheckoutService {
	s := &CheckoutService{config: cfg}
	if cfg.Enabled() {
		s.sessions = client.New(cfg.SecretKey, nil).CheckoutSessions
	}
	return s
}

// NewCheckoutServiceWith uses the given session client
func NewCheckoutServiceWith(cfg config.CheckoutConfig, sessions CheckoutSessions) *CheckoutService {
	return &CheckoutService{config: cfg, sessions: sessions}
}

// Enabled reports whether checkout is configured
func (s *CheckoutService) Enabled() bool {
	return s.config.Enabled() && s.sessions != nil
}

// stripeLocales maps our locales to Stripe Checkout locales; Welsh is unsupported
var stripeLocales = map[model.Locale]string{
	model.LocaleEnglish: "en",
	model.LocaleWelsh:   "auto",
	model.LocalePolish:  "pl",
}

// CreateSession starts a one-off payment and returns the Stripe session id
func (s *CheckoutService) CreateSession(ctx context.Context, lang string) (string, error) {
	if !s.Enabled() {
		return "", ErrCheckoutDisabled
	}

	locale := form.MatchLocale(lang)
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
		Locale:     stripe.String(stripeLocales[locale]),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.config.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.New().String())

	sess, err := s.sessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return "", fmt.Errorf("%w: %s", ErrCheckoutFailed, stripeErr.Msg)
		}
		return "", fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	return sess.ID, nil
}
