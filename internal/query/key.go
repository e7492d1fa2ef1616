package query

import "strings"

// Key identifies one cached query as [domain, operation, ...parameters].
// Two queries with identical keys share cached data; changing any
// parameter produces a new key.
type Key struct {
	Domain string
	Op     string
	Params []string
}

// NewKey builds a composite cache key.
func NewKey(domain, op string, params ...string) Key {
	return Key{Domain: domain, Op: op, Params: params}
}

// String returns the canonical form used for cache lookups.
func (key Key) String() string {
	parts := append([]string{key.Domain, key.Op}, key.Params...)
	return strings.Join(parts, "/")
}

// Cache domains. Invalidation is always scoped to one of these.
const (
	DomainPaymentSettings = "paymentSettings"
	DomainWallet          = "wallet"
	DomainConversion      = "conversion"
	DomainTransfer        = "transfer"
	DomainRefData         = "refData"
)

// Typed key constructors. Building keys through these functions keeps
// collisions and parameter typos out of the call sites.

func PaymentMethodsKey() Key {
	return NewKey(DomainPaymentSettings, "methods")
}

func BanksKey(countryCode, currency string) Key {
	return NewKey(DomainPaymentSettings, "banks", countryCode, currency)
}

func MobileMoneyProvidersKey(countryCode string) Key {
	return NewKey(DomainPaymentSettings, "mobileMoneyProviders", countryCode)
}

func BalancesKey() Key {
	return NewKey(DomainWallet, "balances")
}

func ConversionReceiptKey(reference string) Key {
	return NewKey(DomainConversion, "receipt", reference)
}

func TransferReceiptKey(id string) Key {
	return NewKey(DomainTransfer, "receipt", id)
}

func TransferEligibilityKey() Key {
	return NewKey(DomainTransfer, "eligibility")
}

func CountriesKey() Key {
	return NewKey(DomainRefData, "countries")
}

func CountryKey(code string) Key {
	return NewKey(DomainRefData, "country", code)
}
