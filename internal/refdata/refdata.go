package refdata

import (
	"context"
	"net/http"
	"strings"

	"github.com/rhinoxpay/rhinox-go/internal/config"
	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/query"
)

// Service supplies country/currency lookup data for selectors. Data is
// fetched lazily, cached per session, and backed by one built-in
// fallback dataset so the UI is never left without selectable options.
type Service struct {
	client *gateway.Client
	store  *query.Store
	logger *logger.Logger

	countries *query.Query[[]models.Country]
}

// NewService creates a reference data service
func NewService(cfg *config.Config, client *gateway.Client, store *query.Store, logger *logger.Logger) *Service {
	service := &Service{
		client: client,
		store:  store,
		logger: logger,
	}

	service.countries = query.New(store, query.CountriesKey(), func(ctx context.Context) ([]models.Country, error) {
		var countries []models.Country
		err := client.Do(ctx, http.MethodGet, gateway.RouteCountries, nil, nil, nil, &countries)
		return countries, err
	}).WithTTL(cfg.RefDataCacheTTL)

	return service
}

// Countries returns the country list. A failed or empty remote load
// falls back to the built-in dataset instead of an empty selector.
func (service *Service) Countries(ctx context.Context) []models.Country {
	countries, err := service.countries.Get(ctx)
	if err != nil {
		service.logger.Warnf("countries load failed, using fallback: %v", err)
		return FallbackCountries()
	}
	if len(countries) == 0 {
		service.logger.Warn("countries list empty, using fallback")
		return FallbackCountries()
	}
	return normalize(countries)
}

// Country resolves one country by ISO code, checking the remote list
// first and the fallback dataset second.
func (service *Service) Country(ctx context.Context, code string) (models.Country, bool) {
	code = strings.ToUpper(code)
	for _, country := range service.Countries(ctx) {
		if country.Code == code {
			return country, true
		}
	}
	return models.Country{}, false
}

// CurrencyFor returns the currency of a country code.
func (service *Service) CurrencyFor(ctx context.Context, code string) (string, bool) {
	country, ok := service.Country(ctx, code)
	if !ok {
		return "", false
	}
	return country.Currency, true
}

// normalize tolerates partial data: a country with no flag gets the
// placeholder instead of an empty URL.
func normalize(countries []models.Country) []models.Country {
	normalized := make([]models.Country, 0, len(countries))
	for _, country := range countries {
		if country.FlagURL == "" {
			country.FlagURL = PlaceholderFlagURL
		}
		country.Code = strings.ToUpper(country.Code)
		normalized = append(normalized, country)
	}
	return normalized
}
