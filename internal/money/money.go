package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount represents a non-negative quantity of a single currency.
// The currency code is an ISO-like 3-letter code for fiat or a ticker
// symbol for crypto.
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

// New creates a new Amount and enforces the non-negative invariant.
func New(value decimal.Decimal, currency string) (Amount, error) {
	if value.IsNegative() {
		return Amount{}, fmt.Errorf("amount must be non-negative, got %s", value)
	}
	if strings.TrimSpace(currency) == "" {
		return Amount{}, fmt.Errorf("currency code must not be empty")
	}
	return Amount{Value: value, Currency: strings.ToUpper(currency)}, nil
}

// Parse builds an Amount from a user-entered string. Digit grouping
// separators are stripped so "12,345.67" and "12345.67" parse to the
// same value.
func Parse(entered, currency string) (Amount, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(entered), ",", "")
	if cleaned == "" {
		return Amount{}, fmt.Errorf("amount must not be empty")
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", entered, err)
	}
	return New(value, currency)
}

// APIString returns the plain numeric form sent to the server, without
// digit grouping.
func (amount Amount) APIString() string {
	return amount.Value.String()
}

// Display returns the grouped form shown to the user, e.g. "12,345.67".
func (amount Amount) Display(places int32) string {
	fixed := amount.Value.StringFixed(places)

	integerPart := fixed
	fractionPart := ""
	if dot := strings.IndexByte(fixed, '.'); dot >= 0 {
		integerPart = fixed[:dot]
		fractionPart = fixed[dot:]
	}

	return groupDigits(integerPart) + fractionPart
}

// IsPositive reports whether the amount is strictly greater than zero.
func (amount Amount) IsPositive() bool {
	return amount.Value.IsPositive()
}

// IsZero reports whether the amount is exactly zero.
func (amount Amount) IsZero() bool {
	return amount.Value.IsZero()
}

// groupDigits inserts thousands separators into a plain integer string.
func groupDigits(integer string) string {
	if len(integer) <= 3 {
		return integer
	}

	var builder strings.Builder
	lead := len(integer) % 3
	if lead > 0 {
		builder.WriteString(integer[:lead])
	}
	for i := lead; i < len(integer); i += 3 {
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(integer[i : i+3])
	}
	return builder.String()
}

// Pair is an ordered (from, to) currency pair.
type Pair struct {
	From string
	To   string
}

// NewPair normalizes both codes to upper case.
func NewPair(from, to string) Pair {
	return Pair{From: strings.ToUpper(from), To: strings.ToUpper(to)}
}

// Swap exchanges the two currency roles.
func (pair Pair) Swap() Pair {
	return Pair{From: pair.To, To: pair.From}
}

// Same reports whether both sides name the same currency. When true, no
// conversion or quote is ever requested.
func (pair Pair) Same() bool {
	return pair.From == pair.To
}

// Complete reports whether both sides are populated.
func (pair Pair) Complete() bool {
	return pair.From != "" && pair.To != ""
}
