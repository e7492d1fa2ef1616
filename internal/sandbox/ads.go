package sandbox

import (
	"github.com/google/uuid"

	"github.com/rhinoxpay/rhinox-go/internal/models"
)

// CreateAd persists a P2P trading ad.
func (store *Store) CreateAd(side models.P2PAdSide, req models.P2PAdRequest) (models.P2PAd, *apiFault) {
	if req.MinOrder.GreaterThanOrEqual(req.MaxOrder) {
		return models.P2PAd{}, badRequest("minimum order must be below maximum order", map[string]string{"minOrder": "must be below maxOrder"})
	}
	if !req.Price.IsPositive() {
		return models.P2PAd{}, badRequest("price must be positive", map[string]string{"price": "must be positive"})
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	ad := models.P2PAd{
		ID:           uuid.NewString(),
		Side:         side,
		Asset:        req.Asset,
		FiatCurrency: req.FiatCurrency,
		Price:        req.Price,
		Available:    req.Available,
		MinOrder:     req.MinOrder,
		MaxOrder:     req.MaxOrder,
		Status:       "active",
	}
	store.ads[ad.ID] = ad
	return ad, nil
}

// UpdateAd edits an existing ad.
func (store *Store) UpdateAd(id string, req models.P2PAdRequest) (models.P2PAd, *apiFault) {
	if req.MinOrder.GreaterThanOrEqual(req.MaxOrder) {
		return models.P2PAd{}, badRequest("minimum order must be below maximum order", map[string]string{"minOrder": "must be below maxOrder"})
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	ad, ok := store.ads[id]
	if !ok {
		return models.P2PAd{}, notFound("ad not found")
	}

	ad.Price = req.Price
	ad.Available = req.Available
	ad.MinOrder = req.MinOrder
	ad.MaxOrder = req.MaxOrder
	store.ads[id] = ad
	return ad, nil
}
