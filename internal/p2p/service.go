package p2p

import (
	"context"
	"net/http"

	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/mutation"
)

// Service creates and updates P2P trading ads. Ad submission reuses the
// summary validation contract of the guarded flows but terminates at
// persistence; there is no PIN challenge.
type Service struct {
	client *gateway.Client
	logger *logger.Logger

	createBuy  *mutation.Mutation[models.P2PAdRequest, models.P2PAd]
	createSell *mutation.Mutation[models.P2PAdRequest, models.P2PAd]
	update     *mutation.Mutation[updateAdRequest, models.P2PAd]
}

type updateAdRequest struct {
	ID string
	Ad models.P2PAdRequest
}

// NewService creates a P2P ads service
func NewService(client *gateway.Client, logger *logger.Logger) *Service {
	service := &Service{
		client: client,
		logger: logger,
	}

	service.createBuy = mutation.New("p2p.createBuyAd", func(ctx context.Context, req models.P2PAdRequest) (models.P2PAd, error) {
		var ad models.P2PAd
		err := client.Do(ctx, http.MethodPost, gateway.RouteP2PAdsBuy, nil, nil, req, &ad)
		return ad, err
	})

	service.createSell = mutation.New("p2p.createSellAd", func(ctx context.Context, req models.P2PAdRequest) (models.P2PAd, error) {
		var ad models.P2PAd
		err := client.Do(ctx, http.MethodPost, gateway.RouteP2PAdsSell, nil, nil, req, &ad)
		return ad, err
	})

	service.update = mutation.New("p2p.updateAd", func(ctx context.Context, req updateAdRequest) (models.P2PAd, error) {
		var ad models.P2PAd
		err := client.Do(ctx, http.MethodPut, gateway.RouteP2PAdByID, map[string]string{"id": req.ID}, nil, req.Ad, &ad)
		return ad, err
	})

	return service
}

// ValidateAd applies the client-side summary gate. Violations are
// rejected before any network call.
func ValidateAd(req models.P2PAdRequest) error {
	fields := map[string]string{}
	if req.Asset == "" {
		fields["asset"] = "required"
	}
	if req.FiatCurrency == "" {
		fields["fiatCurrency"] = "required"
	}
	if !req.Price.IsPositive() {
		fields["price"] = "must be positive"
	}
	if !req.Available.IsPositive() {
		fields["available"] = "must be positive"
	}
	if req.MinOrder.GreaterThanOrEqual(req.MaxOrder) {
		fields["minOrder"] = "minimum order must be below maximum order"
	}
	if len(req.PaymentMethodIDs) == 0 {
		fields["paymentMethodIds"] = "at least one payment method required"
	}
	if len(fields) > 0 {
		return gateway.NewValidationError("invalid ad", fields)
	}
	return nil
}

// CreateBuyAd persists a buy ad after client-side validation.
func (service *Service) CreateBuyAd(ctx context.Context, req models.P2PAdRequest) (models.P2PAd, error) {
	if err := ValidateAd(req); err != nil {
		return models.P2PAd{}, err
	}
	return service.createBuy.Do(ctx, req)
}

// CreateSellAd persists a sell ad after client-side validation.
func (service *Service) CreateSellAd(ctx context.Context, req models.P2PAdRequest) (models.P2PAd, error) {
	if err := ValidateAd(req); err != nil {
		return models.P2PAd{}, err
	}
	return service.createSell.Do(ctx, req)
}

// UpdateAd edits an existing ad after client-side validation.
func (service *Service) UpdateAd(ctx context.Context, id string, req models.P2PAdRequest) (models.P2PAd, error) {
	if id == "" {
		return models.P2PAd{}, gateway.NewValidationError("ad id is required", map[string]string{"id": "required"})
	}
	if err := ValidateAd(req); err != nil {
		return models.P2PAd{}, err
	}
	return service.update.Do(ctx, updateAdRequest{ID: id, Ad: req})
}

// Pending reports whether any ad mutation is in flight.
func (service *Service) Pending() bool {
	return service.createBuy.Pending() || service.createSell.Pending() || service.update.Pending()
}
