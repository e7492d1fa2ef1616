package models

import "github.com/shopspring/decimal"

// Wallet is one currency account owned by the authenticated user.
type Wallet struct {
	ID       string          `json:"id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// WalletCreateRequest opens a wallet for a currency.
type WalletCreateRequest struct {
	Currency string `json:"currency"`
}

// Balance is one entry of the balances listing.
type Balance struct {
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
	Pending   decimal.Decimal `json:"pending"`
}

// BalancesResponse is the wallet balances listing.
type BalancesResponse struct {
	Balances []Balance `json:"balances"`
}
