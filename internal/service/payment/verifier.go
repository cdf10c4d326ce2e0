// Package payment confirms client-reported payments before a checkout is
// marked paid.
package payment

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"storefront/internal/domain"
)

// Verifier checks the payment details submitted for a checkout. A nil error
// means the payment may be recorded. The returned reference identifies the
// provider payment; it is empty when nothing was checked with a provider.
type Verifier interface {
	Verify(ctx context.Context, co domain.Checkout, details map[string]interface{}) (string, error)
}

// TrustingVerifier accepts the client's confirmation as-is.
type TrustingVerifier struct {
	logger *log.Logger
}

func NewTrusting(logger *log.Logger) *TrustingVerifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &TrustingVerifier{logger: logger}
}

func (v *TrustingVerifier) Verify(_ context.Context, co domain.Checkout, _ map[string]interface{}) (string, error) {
	v.logger.Printf("payment: unverified confirmation accepted checkout_id=%s method=%s", co.ID, co.PaymentMethod)
	return "", nil
}

type intentGetter interface {
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeVerifier looks the PaymentIntent up with Stripe and requires it to
// have succeeded for exactly the checkout total. The intent id is returned as
// the reference; the checkouts table keeps it unique so one intent pays once.
type StripeVerifier struct {
	intents  intentGetter
	currency string
	logger   *log.Logger
}

func NewStripe(secretKey, currency string, logger *log.Logger) *StripeVerifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &StripeVerifier{
		intents:  &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		currency: strings.ToLower(currency),
		logger:   logger,
	}
}

func (v *StripeVerifier) Verify(ctx context.Context, co domain.Checkout, details map[string]interface{}) (string, error) {
	intentID := intentIDFromDetails(details)
	if intentID == "" {
		return "", fmt.Errorf("%w: paymentIntentId missing from payment details", domain.ErrPaymentRejected)
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := v.intents.Get(intentID, params)
	if err != nil {
		v.logger.Printf("payment: stripe lookup checkout_id=%s intent=%s error=%v", co.ID, intentID, err)
		return "", fmt.Errorf("%w: payment intent lookup failed", domain.ErrPaymentRejected)
	}

	switch {
	case pi.Status != stripe.PaymentIntentStatusSucceeded:
		return "", fmt.Errorf("%w: payment intent status %s", domain.ErrPaymentRejected, pi.Status)
	case pi.Amount != co.TotalPriceCents:
		return "", fmt.Errorf("%w: paid amount %d does not match total %d", domain.ErrPaymentRejected, pi.Amount, co.TotalPriceCents)
	case v.currency != "" && !strings.EqualFold(string(pi.Currency), v.currency):
		return "", fmt.Errorf("%w: currency %s does not match %s", domain.ErrPaymentRejected, pi.Currency, v.currency)
	}
	if ref, ok := pi.Metadata["checkout_id"]; ok && ref != co.ID {
		return "", fmt.Errorf("%w: payment intent belongs to checkout %s", domain.ErrPaymentRejected, ref)
	}

	v.logger.Printf("payment: stripe verified checkout_id=%s intent=%s amount=%d", co.ID, intentID, pi.Amount)
	return intentID, nil
}

func intentIDFromDetails(details map[string]interface{}) string {
	if id, ok := details["paymentIntentId"].(string); ok {
		return id
	}
	if id, ok := details["id"].(string); ok && strings.HasPrefix(id, "pi_") {
		return id
	}
	return ""
}

// New picks the Stripe verifier when a secret key is configured.
func New(secretKey, currency string, logger *log.Logger) Verifier {
	if secretKey == "" {
		return NewTrusting(logger)
	}
	return NewStripe(secretKey, currency, logger)
}
