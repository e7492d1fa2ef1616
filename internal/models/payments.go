package models

// PaymentMethodKind enumerates the supported payout destinations.
type PaymentMethodKind string

const (
	PaymentMethodBankAccount PaymentMethodKind = "bank_account"
	PaymentMethodMobileMoney PaymentMethodKind = "mobile_money"
	PaymentMethodRhinoxPayID PaymentMethodKind = "rhinoxpay_id"
)

// PaymentMethod is a payout destination owned by the authenticated
// user. At most one method is default at a time; the server owns that
// invariant and the client only invalidates its caches.
type PaymentMethod struct {
	ID        string            `json:"id"`
	Kind      PaymentMethodKind `json:"kind"`
	Country   string            `json:"country"`
	Currency  string            `json:"currency"`
	IsDefault bool              `json:"isDefault"`

	// Kind-specific details
	BankCode      string `json:"bankCode,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	ProviderCode  string `json:"providerCode,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	RhinoxPayID   string `json:"rhinoxpayId,omitempty"`
}

// AddBankAccountRequest registers a bank account payout method.
type AddBankAccountRequest struct {
	Country       string `json:"country"`
	Currency      string `json:"currency"`
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// AddMobileMoneyRequest registers a mobile money payout method.
type AddMobileMoneyRequest struct {
	Country      string `json:"country"`
	Currency     string `json:"currency"`
	ProviderCode string `json:"providerCode"`
	PhoneNumber  string `json:"phoneNumber"`
}

// UpdatePaymentMethodRequest edits the mutable fields of a method.
type UpdatePaymentMethodRequest struct {
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
}

// PaymentMethodsResponse is the payment settings listing.
type PaymentMethodsResponse struct {
	Methods []PaymentMethod `json:"methods"`
}

// Bank is a lookup entry for the bank selector.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// MobileMoneyProvider is a lookup entry for the provider selector.
type MobileMoneyProvider struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country"`
}
