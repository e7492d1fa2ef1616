package gateway

import (
	"fmt"
	"strings"
)

// Route patterns for every RhinoxPay API group. Path parameters use the
// {name} placeholder convention and are substituted before the request
// is sent.
const (
	RouteCountries     = "/countries"
	RouteCountryByCode = "/countries/{code}"

	RouteWalletCreate   = "/wallets/create"
	RouteWalletBalances = "/wallets/balances"

	RouteConversionCalculate = "/conversion/calculate"
	RouteConversionInitiate  = "/conversion/initiate"
	RouteConversionConfirm   = "/conversion/confirm"
	RouteConversionReceipt   = "/conversion/receipt/{reference}"

	RoutePaymentSettings            = "/payment-settings"
	RoutePaymentSettingsBankAccount = "/payment-settings/bank-account"
	RoutePaymentSettingsMobileMoney = "/payment-settings/mobile-money"
	RoutePaymentSettingsByID        = "/payment-settings/{id}"
	RoutePaymentSettingsSetDefault  = "/payment-settings/{id}/set-default"
	RoutePaymentSettingsBanks       = "/payment-settings/banks"
	RoutePaymentSettingsProviders   = "/payment-settings/mobile-money-providers"

	RouteTransferInitiate    = "/transfer/initiate"
	RouteTransferVerify      = "/transfer/verify"
	RouteTransferEligibility = "/transfer/eligibility"
	RouteTransferReceipt     = "/transfer/receipt/{id}"

	RouteP2PAdsBuy  = "/p2p/ads/buy"
	RouteP2PAdsSell = "/p2p/ads/sell"
	RouteP2PAdByID  = "/p2p/ads/{id}"

	RouteTatumWebhook = "/crypto/webhooks/tatum"
)

// ExpandRoute substitutes {name} placeholders with the supplied values.
// Every placeholder must be resolved and every value non-empty; a route
// with a hole in it must never reach the wire.
func ExpandRoute(route string, pathParams map[string]string) (string, error) {
	expanded := route
	for name, value := range pathParams {
		if strings.TrimSpace(value) == "" {
			return "", fmt.Errorf("path parameter %q must not be empty", name)
		}
		placeholder := "{" + name + "}"
		if !strings.Contains(expanded, placeholder) {
			return "", fmt.Errorf("route %q has no placeholder %q", route, name)
		}
		expanded = strings.ReplaceAll(expanded, placeholder, value)
	}

	if start := strings.IndexByte(expanded, '{'); start >= 0 {
		return "", fmt.Errorf("route %q has unresolved placeholder %s", route, expanded[start:])
	}
	return expanded, nil
}
