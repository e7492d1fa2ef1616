package transfer

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

// Service exposes the bank/mobile transfer flow: eligibility, initiate,
// verify and receipt. Verification may require step-up credentials on
// top of the PIN.
type Service struct {
	client *gateway.Client
	store  *query.Store
	logger *logger.Logger
	cfg    *config.Config

	eligibility *query.Query[models.TransferEligibility]
	initiate    *mutation.Mutation[models.TransferInitiateRequest, models.TransferInitiateResponse]
	verify      *mutation.Mutation[models.TransferVerifyRequest, models.Receipt]
}

// NewService creates a transfer service
func NewService(cfg *config.Config, client *gateway.Client, store *query.Store, logger *logger.Logger) *Service {
	service := &Service{
		client: client,
		store:  store,
		logger: logger,
		cfg:    cfg,
	}

	service.eligibility = query.New(store, query.TransferEligibilityKey(), func(ctx context.Context) (models.TransferEligibility, error) {
		var eligibility models.TransferEligibility
		err := client.Do(ctx, http.MethodGet, gateway.RouteTransferEligibility, nil, nil, nil, &eligibility)
		return eligibility, err
	})

	service.initiate = mutation.New("transfer.initiate", func(ctx context.Context, req models.TransferInitiateRequest) (models.TransferInitiateResponse, error) {
		var response models.TransferInitiateResponse
		err := client.Do(ctx, http.MethodPost, gateway.RouteTransferInitiate, nil, nil, req, &response)
		return response, err
	})

	service.verify = mutation.New("transfer.verify", func(ctx context.Context, req models.TransferVerifyRequest) (models.Receipt, error) {
		var receipt models.Receipt
		err := client.Do(ctx, http.MethodPost, gateway.RouteTransferVerify, nil, nil, req, &receipt)
		return receipt, err
	}).OnSuccess(func(req models.TransferVerifyRequest, receipt models.Receipt) {
		store.InvalidateDomain(query.DomainWallet)
		store.InvalidateKey(query.TransferReceiptKey(req.Reference))
	})

	return service
}

// Eligibility reports whether the user may transfer, with the blocking
// reason (e.g. pending KYC) when not.
func (service *Service) Eligibility(ctx context.Context) (models.TransferEligibility, error) {
	return service.eligibility.Get(ctx)
}

// Initiate reserves a transfer and returns the reference plus the
// step-up credentials the verify call will need.
func (service *Service) Initiate(ctx context.Context, req models.TransferInitiateRequest) (models.TransferInitiateResponse, error) {
	return service.initiate.Do(ctx, req)
}

// Verify finalizes a transfer with PIN and step-up codes.
func (service *Service) Verify(ctx context.Context, req models.TransferVerifyRequest) (models.Receipt, error) {
	return service.verify.Do(ctx, req)
}

// Pending reports whether an initiate or verify call is in flight.
func (service *Service) Pending() bool {
	return service.initiate.Pending() || service.verify.Pending()
}

// Receipt fetches the settled transfer receipt by id.
func (service *Service) Receipt(ctx context.Context, id string) (models.Receipt, error) {
	receiptQuery := query.New(service.store, query.TransferReceiptKey(id), func(ctx context.Context) (models.Receipt, error) {
		var receipt models.Receipt
		err := service.client.Do(ctx, http.MethodGet, gateway.RouteTransferReceipt, map[string]string{"id": id}, nil, nil, &receipt)
		return receipt, err
	}).WithEnabled(func() bool { return id != "" })

	return receiptQuery.Get(ctx)
}
