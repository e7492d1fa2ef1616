package sandbox

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rhinoxpay/rhinox-go/internal/config"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/refdata"
)

// apiFault is a handler-level rejection carrying the HTTP status and
// the structured message/fields payload the real API uses.
type apiFault struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (fault *apiFault) Error() string {
	return fault.Message
}

func badRequest(message string, fields map[string]string) *apiFault {
	return &apiFault{Status: http.StatusBadRequest, Message: message, Fields: fields}
}

func notFound(message string) *apiFault {
	return &apiFault{Status: http.StatusNotFound, Message: message}
}

// pendingTxn is a reserved but unconfirmed conversion or transfer.
type pendingTxn struct {
	fromCurrency string
	toCurrency   string
	amount       decimal.Decimal
	toAmount     decimal.Decimal
	rate         decimal.Decimal
	fee          decimal.Decimal
	attempts     int

	requiresEmailOtp      bool
	requiresAuthenticator bool
}

// Store holds the sandbox account: one authenticated user with
// balances, payout methods and pending transactions, all in memory.
type Store struct {
	mu sync.Mutex

	pin            string
	maxPinAttempts int

	balances map[string]decimal.Decimal
	methods  map[string]models.PaymentMethod

	pending  map[string]*pendingTxn
	receipts map[string]models.Receipt
	ads      map[string]models.P2PAd

	eligible         bool
	ineligibleReason string

	// unitsPerUSD drives the cross-rate table: rate(from→to) =
	// unitsPerUSD[to] / unitsPerUSD[from].
	unitsPerUSD map[string]decimal.Decimal

	webhookEvents []json.RawMessage
}

// feePercent is charged on the debit side of a conversion, on top of
// the converted amount.
var feePercent = decimal.NewFromFloat(0.005)

// stepUpThreshold is the transfer amount at which the sandbox demands
// an email OTP.
var stepUpThreshold = decimal.NewFromInt(10000)

// NewStore seeds the sandbox account.
func NewStore(cfg *config.Config) *Store {
	return &Store{
		pin:            cfg.SandboxPin,
		maxPinAttempts: cfg.MaxPinAttempts,
		balances: map[string]decimal.Decimal{
			"NGN": decimal.NewFromInt(250000),
			"KES": decimal.NewFromInt(50000),
			"USD": decimal.NewFromInt(1000),
			"BTC": decimal.NewFromFloat(0.05),
		},
		methods:  make(map[string]models.PaymentMethod),
		pending:  make(map[string]*pendingTxn),
		receipts: make(map[string]models.Receipt),
		ads:      make(map[string]models.P2PAd),
		eligible: true,
		unitsPerUSD: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"NGN": decimal.NewFromInt(1500),
			"KES": decimal.RequireFromString("814.5"),
			"GHS": decimal.RequireFromString("15.6"),
			"TZS": decimal.NewFromInt(2700),
			"UGX": decimal.NewFromInt(3800),
			"ZAR": decimal.RequireFromString("18.2"),
			"GBP": decimal.RequireFromString("0.79"),
			"BTC": decimal.RequireFromString("0.0000165"),
		},
	}
}

// Countries returns the reference country list. The sandbox serves the
// same dataset the SDK falls back to.
func (store *Store) Countries() []models.Country {
	return refdata.FallbackCountries()
}

// Banks returns the selectable banks for a country.
func (store *Store) Banks(countryCode string) []models.Bank {
	switch countryCode {
	case "NG":
		return []models.Bank{
			{Code: "044", Name: "Access Bank"},
			{Code: "058", Name: "Guaranty Trust Bank"},
			{Code: "057", Name: "Zenith Bank"},
		}
	case "KE":
		return []models.Bank{
			{Code: "01", Name: "KCB Bank"},
			{Code: "11", Name: "Co-operative Bank"},
			{Code: "68", Name: "Equity Bank"},
		}
	default:
		return []models.Bank{}
	}
}

// MobileMoneyProviders returns the selectable providers for a country.
func (store *Store) MobileMoneyProviders(countryCode string) []models.MobileMoneyProvider {
	switch countryCode {
	case "KE":
		return []models.MobileMoneyProvider{
			{Code: "mpesa", Name: "M-Pesa", Country: "KE"},
			{Code: "airtel", Name: "Airtel Money", Country: "KE"},
		}
	case "GH":
		return []models.MobileMoneyProvider{
			{Code: "mtn", Name: "MTN Mobile Money", Country: "GH"},
			{Code: "vodafone", Name: "Vodafone Cash", Country: "GH"},
		}
	case "TZ":
		return []models.MobileMoneyProvider{
			{Code: "tigopesa", Name: "Tigo Pesa", Country: "TZ"},
			{Code: "mpesa", Name: "M-Pesa", Country: "TZ"},
		}
	default:
		return []models.MobileMoneyProvider{}
	}
}

// SetEligibility overrides transfer eligibility, for tests.
func (store *Store) SetEligibility(eligible bool, reason string) {
	store.mu.Lock()
	store.eligible = eligible
	store.ineligibleReason = reason
	store.mu.Unlock()
}

// rateLocked computes the cross rate between two known currencies.
func (store *Store) rateLocked(fromCurrency, toCurrency string) (decimal.Decimal, *apiFault) {
	fromUnits, fromKnown := store.unitsPerUSD[fromCurrency]
	toUnits, toKnown := store.unitsPerUSD[toCurrency]
	if !fromKnown || !toKnown {
		return decimal.Decimal{}, badRequest("unsupported currency pair", map[string]string{
			"fromCurrency": fromCurrency,
			"toCurrency":   toCurrency,
		})
	}
	return toUnits.DivRound(fromUnits, 8), nil
}

// Quote computes a conversion preview for the input triple.
func (store *Store) Quote(fromCurrency, toCurrency string, amount decimal.Decimal) (models.Quote, *apiFault) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if !amount.IsPositive() {
		return models.Quote{}, badRequest("amount must be greater than zero", map[string]string{"amount": "must be positive"})
	}
	if fromCurrency == toCurrency {
		return models.Quote{}, badRequest("currencies must differ", nil)
	}

	rate, fault := store.rateLocked(fromCurrency, toCurrency)
	if fault != nil {
		return models.Quote{}, fault
	}

	return models.Quote{
		ExchangeRate: rate,
		InverseRate:  decimal.NewFromInt(1).DivRound(rate, 8),
		Fee:          amount.Mul(feePercent).Round(2),
		FeeCurrency:  fromCurrency,
		ToAmount:     amount.Mul(rate).Round(2),
	}, nil
}

// InitiateConversion reserves a conversion and returns its reference.
func (store *Store) InitiateConversion(fromCurrency, toCurrency string, amount decimal.Decimal) (string, *apiFault) {
	quote, fault := store.Quote(fromCurrency, toCurrency, amount)
	if fault != nil {
		return "", fault
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	balance := store.balances[fromCurrency]
	debit := amount.Add(quote.Fee)
	if balance.LessThan(debit) {
		return "", badRequest("insufficient balance", map[string]string{"amount": "exceeds available balance"})
	}

	reference := uuid.NewString()
	store.pending[reference] = &pendingTxn{
		fromCurrency: fromCurrency,
		toCurrency:   toCurrency,
		amount:       amount,
		toAmount:     quote.ToAmount,
		rate:         quote.ExchangeRate,
		fee:          quote.Fee,
	}
	return reference, nil
}

// ConfirmConversion settles a pending conversion after PIN
// verification. The reference is consumed on success and discarded
// after too many failed attempts.
func (store *Store) ConfirmConversion(reference, pin string) (models.Receipt, *apiFault) {
	store.mu.Lock()
	defer store.mu.Unlock()

	txn, ok := store.pending[reference]
	if !ok {
		return models.Receipt{}, badRequest("transaction reference expired or unknown", nil)
	}

	if pin != store.pin {
		txn.attempts++
		if txn.attempts >= store.maxPinAttempts {
			delete(store.pending, reference)
			return models.Receipt{}, badRequest("Too many failed attempts, please restart the transaction", nil)
		}
		return models.Receipt{}, badRequest("Invalid PIN", nil)
	}

	delete(store.pending, reference)

	debit := txn.amount.Add(txn.fee)
	store.balances[txn.fromCurrency] = store.balances[txn.fromCurrency].Sub(debit)
	store.balances[txn.toCurrency] = store.balances[txn.toCurrency].Add(txn.toAmount)

	receipt := models.Receipt{
		Reference:    reference,
		FromCurrency: txn.fromCurrency,
		ToCurrency:   txn.toCurrency,
		FromAmount:   txn.amount,
		ToAmount:     txn.toAmount,
		ExchangeRate: txn.rate,
		Fee:          txn.fee,
		Status:       "settled",
		SettledAt:    time.Now().UTC(),
	}
	store.receipts[reference] = receipt
	return receipt, nil
}

// Receipt returns a settled receipt. Reading it has no side effects.
func (store *Store) Receipt(reference string) (models.Receipt, *apiFault) {
	store.mu.Lock()
	defer store.mu.Unlock()

	receipt, ok := store.receipts[reference]
	if !ok {
		return models.Receipt{}, notFound("receipt not found")
	}
	return receipt, nil
}

// Balances lists all wallet balances.
func (store *Store) Balances() models.BalancesResponse {
	store.mu.Lock()
	defer store.mu.Unlock()

	response := models.BalancesResponse{}
	for currency, available := range store.balances {
		response.Balances = append(response.Balances, models.Balance{
			Currency:  currency,
			Available: available,
			Pending:   decimal.Zero,
		})
	}
	return response
}

// CreateWallet opens a zero balance for a new currency.
func (store *Store) CreateWallet(currency string) (models.Wallet, *apiFault) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if currency == "" {
		return models.Wallet{}, badRequest("currency is required", map[string]string{"currency": "required"})
	}
	if _, exists := store.balances[currency]; exists {
		return models.Wallet{}, badRequest("wallet already exists", map[string]string{"currency": "already exists"})
	}

	store.balances[currency] = decimal.Zero
	return models.Wallet{
		ID:       uuid.NewString(),
		Currency: currency,
		Balance:  decimal.Zero,
	}, nil
}

// RecordWebhook stores an inbound blockchain webhook payload verbatim.
func (store *Store) RecordWebhook(payload json.RawMessage) {
	store.mu.Lock()
	store.webhookEvents = append(store.webhookEvents, payload)
	store.mu.Unlock()
}
