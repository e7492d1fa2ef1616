package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteInput is the (fromCurrency, toCurrency, amount) triple a quote is
// derived from. A quote is stale the moment any of the three changes.
type QuoteInput struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Amount       decimal.Decimal `json:"amount"`
}

// Equal reports whether two inputs would produce the same quote.
func (input QuoteInput) Equal(other QuoteInput) bool {
	return input.FromCurrency == other.FromCurrency &&
		input.ToCurrency == other.ToCurrency &&
		input.Amount.Equal(other.Amount)
}

// Quote is a computed preview of a conversion, not yet committed.
type Quote struct {
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	InverseRate  decimal.Decimal `json:"inverseRate"`
	Fee          decimal.Decimal `json:"fee"`
	FeeCurrency  string          `json:"feeCurrency"`
	ToAmount     decimal.Decimal `json:"toAmount"`
}

// ConversionInitiateRequest reserves a conversion at the quoted terms.
type ConversionInitiateRequest struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Amount       decimal.Decimal `json:"amount"`
}

// ConversionInitiateResponse carries the opaque reference required by
// the confirm call.
type ConversionInitiateResponse struct {
	Reference string `json:"conversionReference"`
}

// ConversionConfirmRequest finalizes a conversion with the user's PIN.
type ConversionConfirmRequest struct {
	Reference string `json:"conversionReference"`
	Pin       string `json:"pin"`
}

// Receipt is the settled view of a conversion or transfer, fetched by
// reference. Fetching it is a pure read.
type Receipt struct {
	Reference    string          `json:"reference"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	FromAmount   decimal.Decimal `json:"fromAmount"`
	ToAmount     decimal.Decimal `json:"toAmount"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	Fee          decimal.Decimal `json:"fee"`
	Status       string          `json:"status"`
	SettledAt    time.Time       `json:"settledAt"`
}
