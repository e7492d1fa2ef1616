package models

import "github.com/shopspring/decimal"

// TransferInitiateRequest reserves a transfer to a payment method.
type TransferInitiateRequest struct {
	Currency        string          `json:"currency"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethodID string          `json:"paymentMethodId"`
	Narration       string          `json:"narration,omitempty"`
}

// TransferInitiateResponse carries the reference for the verify call
// and tells the client which step-up credentials the server expects.
type TransferInitiateResponse struct {
	Reference             string `json:"transferReference"`
	RequiresEmailOtp      bool   `json:"requiresEmailOtp"`
	RequiresAuthenticator bool   `json:"requiresAuthenticator"`
}

// TransferVerifyRequest finalizes a transfer with PIN plus any step-up
// credentials the initiate response asked for.
type TransferVerifyRequest struct {
	Reference         string `json:"transferReference"`
	Pin               string `json:"pin"`
	EmailOtp          string `json:"emailOtp,omitempty"`
	AuthenticatorCode string `json:"authenticatorCode,omitempty"`
}

// TransferEligibility says whether the user may transfer at all, e.g.
// pending KYC blocks it with a reason.
type TransferEligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}
