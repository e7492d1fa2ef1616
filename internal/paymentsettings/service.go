package paymentsettings

import (
	"context"
	"net/http"

	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/mutation"
	"github.com/rhinoxpay/rhinox-go/internal/query"
)

// Service manages the user's payout methods and the bank/provider
// lookups behind the selectors. Every write invalidates the whole
// paymentSettings cache domain so the next read reflects server truth.
type Service struct {
	client *gateway.Client
	store  *query.Store
	logger *logger.Logger

	methods *query.Query[models.PaymentMethodsResponse]

	addBankAccount *mutation.Mutation[models.AddBankAccountRequest, models.PaymentMethod]
	addMobileMoney *mutation.Mutation[models.AddMobileMoneyRequest, models.PaymentMethod]
	update         *mutation.Mutation[updateRequest, models.PaymentMethod]
	remove         *mutation.Mutation[string, struct{}]
	setDefault     *mutation.Mutation[string, models.PaymentMethod]
}

type updateRequest struct {
	ID     string
	Fields models.UpdatePaymentMethodRequest
}

// NewService creates a payment settings service
func NewService(client *gateway.Client, store *query.Store, logger *logger.Logger) *Service {
	service := &Service{
		client: client,
		store:  store,
		logger: logger,
	}

	invalidate := func() {
		store.InvalidateDomain(query.DomainPaymentSettings)
	}

	service.methods = query.New(store, query.PaymentMethodsKey(), func(ctx context.Context) (models.PaymentMethodsResponse, error) {
		var response models.PaymentMethodsResponse
		err := client.Do(ctx, http.MethodGet, gateway.RoutePaymentSettings, nil, nil, nil, &response)
		return response, err
	})

	service.addBankAccount = mutation.New("paymentSettings.addBankAccount", func(ctx context.Context, req models.AddBankAccountRequest) (models.PaymentMethod, error) {
		var method models.PaymentMethod
		err := client.Do(ctx, http.MethodPost, gateway.RoutePaymentSettingsBankAccount, nil, nil, req, &method)
		return method, err
	}).OnSuccess(func(models.AddBankAccountRequest, models.PaymentMethod) { invalidate() })

	service.addMobileMoney = mutation.New("paymentSettings.addMobileMoney", func(ctx context.Context, req models.AddMobileMoneyRequest) (models.PaymentMethod, error) {
		var method models.PaymentMethod
		err := client.Do(ctx, http.MethodPost, gateway.RoutePaymentSettingsMobileMoney, nil, nil, req, &method)
		return method, err
	}).OnSuccess(func(models.AddMobileMoneyRequest, models.PaymentMethod) { invalidate() })

	service.update = mutation.New("paymentSettings.update", func(ctx context.Context, req updateRequest) (models.PaymentMethod, error) {
		var method models.PaymentMethod
		err := client.Do(ctx, http.MethodPut, gateway.RoutePaymentSettingsByID, map[string]string{"id": req.ID}, nil, req.Fields, &method)
		return method, err
	}).OnSuccess(func(updateRequest, models.PaymentMethod) { invalidate() })

	service.remove = mutation.New("paymentSettings.delete", func(ctx context.Context, id string) (struct{}, error) {
		err := client.Do(ctx, http.MethodDelete, gateway.RoutePaymentSettingsByID, map[string]string{"id": id}, nil, nil, nil)
		return struct{}{}, err
	}).OnSuccess(func(string, struct{}) { invalidate() })

	service.setDefault = mutation.New("paymentSettings.setDefault", func(ctx context.Context, id string) (models.PaymentMethod, error) {
		var method models.PaymentMethod
		err := client.Do(ctx, http.MethodPost, gateway.RoutePaymentSettingsSetDefault, map[string]string{"id": id}, nil, nil, &method)
		return method, err
	}).OnSuccess(func(string, models.PaymentMethod) { invalidate() })

	return service
}

// Methods lists the user's payout methods, cached until a write
// invalidates them.
func (service *Service) Methods(ctx context.Context) (models.PaymentMethodsResponse, error) {
	return service.methods.Get(ctx)
}

// RefreshMethods forces a fresh listing.
func (service *Service) RefreshMethods(ctx context.Context) (models.PaymentMethodsResponse, error) {
	return service.methods.Refetch(ctx)
}

// AddBankAccount registers a bank account payout method.
func (service *Service) AddBankAccount(ctx context.Context, req models.AddBankAccountRequest) (models.PaymentMethod, error) {
	fields := map[string]string{}
	if req.Country == "" {
		fields["country"] = "required"
	}
	if req.BankCode == "" {
		fields["bankCode"] = "required"
	}
	if req.AccountNumber == "" {
		fields["accountNumber"] = "required"
	}
	if len(fields) > 0 {
		return models.PaymentMethod{}, gateway.NewValidationError("missing bank account details", fields)
	}
	return service.addBankAccount.Do(ctx, req)
}

// AddMobileMoney registers a mobile money payout method.
func (service *Service) AddMobileMoney(ctx context.Context, req models.AddMobileMoneyRequest) (models.PaymentMethod, error) {
	fields := map[string]string{}
	if req.Country == "" {
		fields["country"] = "required"
	}
	if req.ProviderCode == "" {
		fields["providerCode"] = "required"
	}
	if req.PhoneNumber == "" {
		fields["phoneNumber"] = "required"
	}
	if len(fields) > 0 {
		return models.PaymentMethod{}, gateway.NewValidationError("missing mobile money details", fields)
	}
	return service.addMobileMoney.Do(ctx, req)
}

// Update edits a payout method's mutable fields.
func (service *Service) Update(ctx context.Context, id string, req models.UpdatePaymentMethodRequest) (models.PaymentMethod, error) {
	return service.update.Do(ctx, updateRequest{ID: id, Fields: req})
}

// Delete removes a payout method permanently.
func (service *Service) Delete(ctx context.Context, id string) error {
	_, err := service.remove.Do(ctx, id)
	return err
}

// SetDefault marks one method as default. The server keeps at most one
// default; the client only drops its caches.
func (service *Service) SetDefault(ctx context.Context, id string) (models.PaymentMethod, error) {
	return service.setDefault.Do(ctx, id)
}

// Banks lists selectable banks for a country and currency.
func (service *Service) Banks(ctx context.Context, countryCode, currency string) ([]models.Bank, error) {
	banksQuery := query.New(service.store, query.BanksKey(countryCode, currency), func(ctx context.Context) ([]models.Bank, error) {
		var banks []models.Bank
		queryParams := map[string]string{"countryCode": countryCode, "currency": currency}
		err := service.client.Do(ctx, http.MethodGet, gateway.RoutePaymentSettingsBanks, nil, queryParams, nil, &banks)
		return banks, err
	}).WithEnabled(func() bool { return countryCode != "" })

	return banksQuery.Get(ctx)
}

// MobileMoneyProviders lists selectable providers for a country.
func (service *Service) MobileMoneyProviders(ctx context.Context, countryCode string) ([]models.MobileMoneyProvider, error) {
	providersQuery := query.New(service.store, query.MobileMoneyProvidersKey(countryCode), func(ctx context.Context) ([]models.MobileMoneyProvider, error) {
		var providers []models.MobileMoneyProvider
		queryParams := map[string]string{"countryCode": countryCode}
		err := service.client.Do(ctx, http.MethodGet, gateway.RoutePaymentSettingsProviders, nil, queryParams, nil, &providers)
		return providers, err
	}).WithEnabled(func() bool { return countryCode != "" })

	return providersQuery.Get(ctx)
}
