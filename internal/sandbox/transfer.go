package sandbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rhinoxpay/rhinox-go/internal/models"
)

// Eligibility reports whether the sandbox user may transfer.
func (store *Store) Eligibility() models.TransferEligibility {
	store.mu.Lock()
	defer store.mu.Unlock()
	return models.TransferEligibility{
		Eligible: store.eligible,
		Reason:   store.ineligibleReason,
	}
}

// InitiateTransfer reserves a transfer to a payout method. Amounts at
// or above the step-up threshold require an email OTP on verify.
func (store *Store) InitiateTransfer(req models.TransferInitiateRequest) (models.TransferInitiateResponse, *apiFault) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if !store.eligible {
		return models.TransferInitiateResponse{}, badRequest(store.ineligibleReason, nil)
	}
	if !req.Amount.IsPositive() {
		return models.TransferInitiateResponse{}, badRequest("amount must be greater than zero", map[string]string{"amount": "must be positive"})
	}
	if _, ok := store.methods[req.PaymentMethodID]; !ok {
		return models.TransferInitiateResponse{}, badRequest("unknown payment method", map[string]string{"paymentMethodId": "not found"})
	}
	if store.balances[req.Currency].LessThan(req.Amount) {
		return models.TransferInitiateResponse{}, badRequest("insufficient balance", map[string]string{"amount": "exceeds available balance"})
	}

	reference := uuid.NewString()
	store.pending[reference] = &pendingTxn{
		fromCurrency:     req.Currency,
		toCurrency:       req.Currency,
		amount:           req.Amount,
		toAmount:         req.Amount,
		rate:             decimal.NewFromInt(1),
		fee:              decimal.Zero,
		requiresEmailOtp: req.Amount.GreaterThanOrEqual(stepUpThreshold),
	}

	return models.TransferInitiateResponse{
		Reference:        reference,
		RequiresEmailOtp: req.Amount.GreaterThanOrEqual(stepUpThreshold),
	}, nil
}

// VerifyTransfer settles a pending transfer after PIN and step-up
// verification.
func (store *Store) VerifyTransfer(req models.TransferVerifyRequest) (models.Receipt, *apiFault) {
	store.mu.Lock()
	defer store.mu.Unlock()

	txn, ok := store.pending[req.Reference]
	if !ok {
		return models.Receipt{}, badRequest("transaction reference expired or unknown", nil)
	}

	if req.Pin != store.pin {
		txn.attempts++
		if txn.attempts >= store.maxPinAttempts {
			delete(store.pending, req.Reference)
			return models.Receipt{}, badRequest("Too many failed attempts, please restart the transaction", nil)
		}
		return models.Receipt{}, badRequest("Invalid PIN", nil)
	}

	if txn.requiresEmailOtp && len(req.EmailOtp) != 6 {
		return models.Receipt{}, badRequest("Invalid email verification code", map[string]string{"emailOtp": "must be 6 digits"})
	}

	delete(store.pending, req.Reference)
	store.balances[txn.fromCurrency] = store.balances[txn.fromCurrency].Sub(txn.amount)

	receipt := models.Receipt{
		Reference:    req.Reference,
		FromCurrency: txn.fromCurrency,
		ToCurrency:   txn.toCurrency,
		FromAmount:   txn.amount,
		ToAmount:     txn.toAmount,
		ExchangeRate: txn.rate,
		Fee:          txn.fee,
		Status:       "settled",
		SettledAt:    time.Now().UTC(),
	}
	store.receipts[req.Reference] = receipt
	return receipt, nil
}
