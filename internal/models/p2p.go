package models

import "github.com/shopspring/decimal"

// P2PAdSide distinguishes buy and sell ads.
type P2PAdSide string

const (
	P2PAdBuy  P2PAdSide = "buy"
	P2PAdSell P2PAdSide = "sell"
)

// P2PAdRequest creates or updates a P2P trading ad. MinOrder must be
// strictly below MaxOrder; the client rejects violations before any
// network call.
type P2PAdRequest struct {
	Asset            string          `json:"asset"`
	FiatCurrency     string          `json:"fiatCurrency"`
	Price            decimal.Decimal `json:"price"`
	Available        decimal.Decimal `json:"available"`
	MinOrder         decimal.Decimal `json:"minOrder"`
	MaxOrder         decimal.Decimal `json:"maxOrder"`
	PaymentMethodIDs []string        `json:"paymentMethodIds"`
	Terms            string          `json:"terms,omitempty"`
}

// P2PAd is a persisted trading ad.
type P2PAd struct {
	ID           string          `json:"id"`
	Side         P2PAdSide       `json:"side"`
	Asset        string          `json:"asset"`
	FiatCurrency string          `json:"fiatCurrency"`
	Price        decimal.Decimal `json:"price"`
	Available    decimal.Decimal `json:"available"`
	MinOrder     decimal.Decimal `json:"minOrder"`
	MaxOrder     decimal.Decimal `json:"maxOrder"`
	Status       string          `json:"status"`
}
