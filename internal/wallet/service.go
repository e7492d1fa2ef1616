package wallet

import (
	"context"
	"net/http"

	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/mutation"
	"github.com/rhinoxpay/rhinox-go/internal/query"
)

// Service exposes wallet lifecycle and balance reads. Balances are a
// shared, read-mostly cache; only successful mutations invalidate them.
type Service struct {
	client *gateway.Client
	store  *query.Store
	logger *logger.Logger

	balances     *query.Query[models.BalancesResponse]
	createWallet *mutation.Mutation[models.WalletCreateRequest, models.Wallet]
}

// NewService creates a wallet service
func NewService(client *gateway.Client, store *query.Store, logger *logger.Logger) *Service {
	service := &Service{
		client: client,
		store:  store,
		logger: logger,
	}

	service.balances = query.New(store, query.BalancesKey(), func(ctx context.Context) (models.BalancesResponse, error) {
		var response models.BalancesResponse
		err := client.Do(ctx, http.MethodGet, gateway.RouteWalletBalances, nil, nil, nil, &response)
		return response, err
	})

	service.createWallet = mutation.New("wallet.create", func(ctx context.Context, req models.WalletCreateRequest) (models.Wallet, error) {
		var wallet models.Wallet
		err := client.Do(ctx, http.MethodPost, gateway.RouteWalletCreate, nil, nil, req, &wallet)
		return wallet, err
	}).OnSuccess(func(models.WalletCreateRequest, models.Wallet) {
		store.InvalidateDomain(query.DomainWallet)
	})

	return service
}

// Balances returns the cached balances, fetching on first use.
func (service *Service) Balances(ctx context.Context) (models.BalancesResponse, error) {
	return service.balances.Get(ctx)
}

// RefreshBalances forces a fresh fetch, e.g. pull-to-refresh.
func (service *Service) RefreshBalances(ctx context.Context) (models.BalancesResponse, error) {
	return service.balances.Refetch(ctx)
}

// CreateWallet opens a wallet for the currency.
func (service *Service) CreateWallet(ctx context.Context, currency string) (models.Wallet, error) {
	if currency == "" {
		return models.Wallet{}, gateway.NewValidationError("currency is required", map[string]string{"currency": "required"})
	}
	return service.createWallet.Do(ctx, models.WalletCreateRequest{Currency: currency})
}
