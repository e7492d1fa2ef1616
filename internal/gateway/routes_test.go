package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRoute_SubstitutesPlaceholders(t *testing.T) {
	path, err := ExpandRoute(RouteConversionReceipt, map[string]string{"reference": "abc-123"})
	require.NoError(t, err)
	assert.Equal(t, "/conversion/receipt/abc-123", path)
}

func TestExpandRoute_MultipleUses(t *testing.T) {
	path, err := ExpandRoute(RoutePaymentSettingsSetDefault, map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/payment-settings/42/set-default", path)
}

func TestExpandRoute_RejectsEmptyValue(t *testing.T) {
	_, err := ExpandRoute(RouteCountryByCode, map[string]string{"code": " "})
	assert.Error(t, err)
}

func TestExpandRoute_RejectsUnknownPlaceholder(t *testing.T) {
	_, err := ExpandRoute(RouteCountries, map[string]string{"code": "NG"})
	assert.Error(t, err)
}

func TestExpandRoute_RejectsUnresolvedPlaceholder(t *testing.T) {
	_, err := ExpandRoute(RouteCountryByCode, nil)
	assert.Error(t, err)
}
