// Package cart builds the payment-provider configuration handed to the
// client-side cart.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// Fixed provider modes. The cart only ever runs one-off payments through a
// hosted checkout session.
const (
	ModePayment             = "payment"
	CartModeCheckoutSession = "checkout-session"
	DefaultCurrency         = "USD"
)

// ErrMissingPublishableKey is returned when production runs without a key.
var ErrMissingPublishableKey = errors.New("payments.publishable_key is required in production")

// Settings is the operator-supplied part of the provider configuration.
type Settings struct {
	PublishableKey string
	Currency       string
	SuccessURL     string
	CancelURL      string
}

// ProviderConfig is the configuration the cart provider is mounted with.
type ProviderConfig struct {
	Mode           string `json:"mode"`
	CartMode       string `json:"cartMode"`
	PublishableKey string `json:"stripe"`
	Currency       string `json:"currency"`
	SuccessURL     string `json:"successUrl,omitempty"`
	CancelURL      string `json:"cancelUrl,omitempty"`
}

// NewProviderConfig validates s and fills in the fixed modes.
func NewProviderConfig(s Settings, production bool) (ProviderConfig, error) {
	code := strings.ToUpper(strings.TrimSpace(s.Currency))
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("invalid currency %q: %w", s.Currency, err)
	}

	key := strings.TrimSpace(s.PublishableKey)
	if production && key == "" {
		return ProviderConfig{}, ErrMissingPublishableKey
	}

	return ProviderConfig{
		Mode:           ModePayment,
		CartMode:       CartModeCheckoutSession,
		PublishableKey: key,
		Currency:       unit.String(),
		SuccessURL:     s.SuccessURL,
		CancelURL:      s.CancelURL,
	}, nil
}

// JSON encodes the config for a data attribute or API response.
func (c ProviderConfig) JSON() string {
	b, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// FormatCents renders an amount in the currency's minor units, e.g. 1250 USD
// as "US$ 12.50". The number of decimals follows the currency, so 500 JPY is
// "JP¥ 500". Unknown codes fall back to two decimals and the raw code.
func FormatCents(cents int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%d.%02d %s", cents/100, abs(cents%100), code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	value := float64(cents) / math.Pow10(scale)
	return fmt.Sprintf("%v %s", currency.Symbol(unit), strconv.FormatFloat(value, 'f', scale, 64))
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
