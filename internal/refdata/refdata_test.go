package refdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/query"
	"github.com/rhinoxpay/rhinox-go/internal/testutils"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testutils.MockConfigWithServer(server)
	testLogger := testutils.MockLogger()
	client := gateway.NewClient(cfg, testLogger)
	return NewService(cfg, client, query.NewStore(), testLogger)
}

func TestCountries_ServesRemoteList(t *testing.T) {
	service := newTestService(t, func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode([]models.Country{
			{Code: "ng", Name: "Nigeria", Currency: "NGN", FlagURL: "https://cdn.example.com/ng.png"},
			{Code: "KE", Name: "Kenya", Currency: "KES"},
		})
	})

	countries := service.Countries(context.Background())

	require.Len(t, countries, 2)
	assert.Equal(t, "NG", countries[0].Code, "codes are normalized to upper case")
	assert.Equal(t, "https://cdn.example.com/ng.png", countries[0].FlagURL)
	assert.Equal(t, PlaceholderFlagURL, countries[1].FlagURL, "missing flags get the placeholder")
}

func TestCountries_FallsBackOnServerError(t *testing.T) {
	service := newTestService(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	})

	countries := service.Countries(context.Background())

	assert.Equal(t, FallbackCountries(), countries)
}

func TestCountries_FallsBackOnEmptyList(t *testing.T) {
	service := newTestService(t, func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode([]models.Country{})
	})

	countries := service.Countries(context.Background())

	assert.Equal(t, FallbackCountries(), countries)
}

func TestCountries_CachesRemoteList(t *testing.T) {
	var requestCount int32
	service := newTestService(t, func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		json.NewEncoder(writer).Encode(FallbackCountries())
	})

	service.Countries(context.Background())
	service.Countries(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
}

func TestCountry_LookupByCode(t *testing.T) {
	service := newTestService(t, func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode(FallbackCountries())
	})

	country, ok := service.Country(context.Background(), "ke")
	require.True(t, ok)
	assert.Equal(t, "Kenya", country.Name)

	_, ok = service.Country(context.Background(), "XX")
	assert.False(t, ok)
}

func TestCurrencyFor(t *testing.T) {
	service := newTestService(t, func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode(FallbackCountries())
	})

	currency, ok := service.CurrencyFor(context.Background(), "NG")
	require.True(t, ok)
	assert.Equal(t, "NGN", currency)
}

func TestFallbackCountries_ReturnsACopy(t *testing.T) {
	first := FallbackCountries()
	first[0].Name = "mutated"

	second := FallbackCountries()
	assert.Equal(t, "Nigeria", second[0].Name)
}
