package conversion

import (
	"context"
	"net/http"

	"github.com/rhinoxpay/rhinox-go/internal/config"
	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/mutation"
	"github.com/rhinoxpay/rhinox-go/internal/query"
)

// Service exposes the conversion flow calls: calculate (quote),
// initiate, confirm and receipt.
type Service struct {
	client *gateway.Client
	store  *query.Store
	logger *logger.Logger
	cfg    *config.Config

	initiate *mutation.Mutation[models.ConversionInitiateRequest, models.ConversionInitiateResponse]
	confirm  *mutation.Mutation[models.ConversionConfirmRequest, models.Receipt]
}

// NewService creates a conversion service
func NewService(cfg *config.Config, client *gateway.Client, store *query.Store, logger *logger.Logger) *Service {
	service := &Service{
		client: client,
		store:  store,
		logger: logger,
		cfg:    cfg,
	}

	service.initiate = mutation.New("conversion.initiate", func(ctx context.Context, req models.ConversionInitiateRequest) (models.ConversionInitiateResponse, error) {
		var response models.ConversionInitiateResponse
		err := client.Do(ctx, http.MethodPost, gateway.RouteConversionInitiate, nil, nil, req, &response)
		return response, err
	})

	service.confirm = mutation.New("conversion.confirm", func(ctx context.Context, req models.ConversionConfirmRequest) (models.Receipt, error) {
		var receipt models.Receipt
		err := client.Do(ctx, http.MethodPost, gateway.RouteConversionConfirm, nil, nil, req, &receipt)
		return receipt, err
	}).OnSuccess(func(req models.ConversionConfirmRequest, receipt models.Receipt) {
		// Settlement moves money: balances and the receipt keyed by
		// the consumed reference must reflect server truth on next read.
		store.InvalidateDomain(query.DomainWallet)
		store.InvalidateKey(query.ConversionReceiptKey(req.Reference))
	})

	return service
}

// Calculate requests a quote for the input triple. It never fires for
// an incomplete triple or when both currencies are the same; those are
// rejected client-side without network activity.
func (service *Service) Calculate(ctx context.Context, input models.QuoteInput) (models.Quote, error) {
	if !input.Amount.IsPositive() {
		return models.Quote{}, gateway.NewValidationError("amount must be greater than zero", map[string]string{"amount": "must be positive"})
	}
	if input.FromCurrency == input.ToCurrency {
		return models.Quote{}, gateway.NewValidationError("currencies must differ", map[string]string{"toCurrency": "must differ from fromCurrency"})
	}

	queryParams := map[string]string{
		"fromCurrency": input.FromCurrency,
		"toCurrency":   input.ToCurrency,
		"amount":       input.Amount.String(),
	}

	var quote models.Quote
	err := service.client.Do(ctx, http.MethodGet, gateway.RouteConversionCalculate, nil, queryParams, nil, &quote)
	return quote, err
}

// Initiate reserves a conversion and returns the transaction reference.
func (service *Service) Initiate(ctx context.Context, req models.ConversionInitiateRequest) (models.ConversionInitiateResponse, error) {
	return service.initiate.Do(ctx, req)
}

// Confirm finalizes a conversion with the reference and PIN.
func (service *Service) Confirm(ctx context.Context, req models.ConversionConfirmRequest) (models.Receipt, error) {
	return service.confirm.Do(ctx, req)
}

// Pending reports whether an initiate or confirm call is in flight.
func (service *Service) Pending() bool {
	return service.initiate.Pending() || service.confirm.Pending()
}

// Receipt fetches the settled receipt by reference. The fetch is a pure
// read and idempotent to repeat.
func (service *Service) Receipt(ctx context.Context, reference string) (models.Receipt, error) {
	receiptQuery := query.New(service.store, query.ConversionReceiptKey(reference), func(ctx context.Context) (models.Receipt, error) {
		var receipt models.Receipt
		err := service.client.Do(ctx, http.MethodGet, gateway.RouteConversionReceipt, map[string]string{"reference": reference}, nil, nil, &receipt)
		return receipt, err
	}).WithEnabled(func() bool { return reference != "" })

	return receiptQuery.Get(ctx)
}
