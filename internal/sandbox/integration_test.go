package sandbox

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinoxpay/rhinox-go/internal/config"
	"github.com/rhinoxpay/rhinox-go/internal/conversion"
	"github.com/rhinoxpay/rhinox-go/internal/flow"
	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/money"
	"github.com/rhinoxpay/rhinox-go/internal/p2p"
	"github.com/rhinoxpay/rhinox-go/internal/paymentsettings"
	"github.com/rhinoxpay/rhinox-go/internal/query"
	"github.com/rhinoxpay/rhinox-go/internal/ratelimit"
	"github.com/rhinoxpay/rhinox-go/internal/testutils"
	"github.com/rhinoxpay/rhinox-go/internal/transfer"
	"github.com/rhinoxpay/rhinox-go/internal/wallet"
)

// testEnv wires the real SDK against an in-process sandbox server.
type testEnv struct {
	cfg        *config.Config
	sandbox    *Store
	client     *gateway.Client
	queryStore *query.Store
	server     *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testutils.MockConfig()
	testLogger := testutils.MockLogger()
	sandboxStore := NewStore(cfg)

	handlers := NewHandlers(cfg, sandboxStore, testLogger)
	server := httptest.NewServer(handlers.SetupRoutes())
	t.Cleanup(server.Close)

	cfg.APIBaseURL = server.URL
	return &testEnv{
		cfg:        cfg,
		sandbox:    sandboxStore,
		client:     gateway.NewClient(cfg, testLogger),
		queryStore: query.NewStore(),
		server:     server,
	}
}

func (env *testEnv) conversionService() *conversion.Service {
	return conversion.NewService(env.cfg, env.client, env.queryStore, testutils.MockLogger())
}

func (env *testEnv) transferService() *transfer.Service {
	return transfer.NewService(env.cfg, env.client, env.queryStore, testutils.MockLogger())
}

func (env *testEnv) walletService() *wallet.Service {
	return wallet.NewService(env.client, env.queryStore, testutils.MockLogger())
}

func (env *testEnv) paymentService() *paymentsettings.Service {
	return paymentsettings.NewService(env.client, env.queryStore, testutils.MockLogger())
}

func pressPin(ctx context.Context, runner *conversion.Runner, pin string) {
	for _, key := range pin {
		runner.PressDigit(ctx, key)
	}
}

func TestConversion_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.conversionService().NewRunner()

	runner.SetPair(ctx, money.NewPair("NGN", "KES"))
	runner.SetAmount(ctx, decimal.NewFromInt(100))

	quote, ok := runner.Flow().Quote()
	require.True(t, ok, "quote must settle for a complete triple")
	assert.True(t, quote.ExchangeRate.Equal(decimal.RequireFromString("0.543")), "got rate %s", quote.ExchangeRate)
	assert.True(t, quote.ToAmount.Equal(decimal.RequireFromString("54.3")), "got toAmount %s", quote.ToAmount)

	received, err := money.New(quote.ToAmount, "KES")
	require.NoError(t, err)
	assert.Equal(t, "54.30", received.Display(2))

	require.NoError(t, runner.Proceed())
	runner.ConfirmSummary(ctx)
	require.Equal(t, flow.PhaseChallenge, runner.Flow().Phase())
	require.NotEmpty(t, runner.Flow().Reference())

	pressPin(ctx, runner, "12345")
	require.NoError(t, runner.Flow().Err())
	assert.Equal(t, flow.PhaseReceipt, runner.Flow().Phase())

	receipt, err := runner.Receipt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "settled", receipt.Status)
	assert.True(t, receipt.ToAmount.Equal(decimal.RequireFromString("54.3")))

	// Reading the receipt again is a pure read; nothing settles twice.
	again, err := runner.Receipt(ctx)
	require.NoError(t, err)
	assert.Equal(t, receipt.Reference, again.Reference)

	balances, err := env.walletService().Balances(ctx)
	require.NoError(t, err)
	byCurrency := map[string]decimal.Decimal{}
	for _, balance := range balances.Balances {
		byCurrency[balance.Currency] = balance.Available
	}
	assert.True(t, byCurrency["NGN"].Equal(decimal.RequireFromString("249899.5")),
		"NGN debited amount plus fee, got %s", byCurrency["NGN"])
	assert.True(t, byCurrency["KES"].Equal(decimal.RequireFromString("50054.3")),
		"KES credited the converted amount, got %s", byCurrency["KES"])
}

func TestConversion_WrongPinThenRecovery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.conversionService().NewRunner()

	runner.SetPair(ctx, money.NewPair("NGN", "KES"))
	runner.SetAmount(ctx, decimal.NewFromInt(100))
	require.NoError(t, runner.Proceed())
	runner.ConfirmSummary(ctx)
	reference := runner.Flow().Reference()
	require.NotEmpty(t, reference)

	pressPin(ctx, runner, "99999")

	assert.Equal(t, flow.PhaseChallenge, runner.Flow().Phase())
	assert.Equal(t, reference, runner.Flow().Reference(), "reference survives a wrong PIN")
	assert.Empty(t, runner.Flow().Pin())
	require.Error(t, runner.Flow().Err())
	assert.Equal(t, "Invalid PIN", runner.Flow().Err().Error())

	pressPin(ctx, runner, "12345")
	assert.Equal(t, flow.PhaseReceipt, runner.Flow().Phase())
}

func TestConversion_PinAttemptLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.conversionService().NewRunner()

	runner.SetPair(ctx, money.NewPair("NGN", "KES"))
	runner.SetAmount(ctx, decimal.NewFromInt(100))
	require.NoError(t, runner.Proceed())
	runner.ConfirmSummary(ctx)

	for attempt := 0; attempt < 3; attempt++ {
		pressPin(ctx, runner, "99999")
	}

	assert.Equal(t, flow.PhaseSummary, runner.Flow().Phase(), "attempt limit sends the user back to re-initiate")
	assert.Empty(t, runner.Flow().Reference())
}

func TestConversion_InsufficientBalanceRejectedAtInitiate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.conversionService().NewRunner()

	runner.SetPair(ctx, money.NewPair("NGN", "KES"))
	runner.SetAmount(ctx, decimal.NewFromInt(10000000))
	require.NoError(t, runner.Proceed())
	runner.ConfirmSummary(ctx)

	assert.Equal(t, flow.PhaseSummary, runner.Flow().Phase())
	require.Error(t, runner.Flow().Err())

	var apiError *gateway.APIError
	require.ErrorAs(t, runner.Flow().Err(), &apiError)
	assert.Equal(t, gateway.KindServer, apiError.Kind)
	assert.Equal(t, "insufficient balance", apiError.Message)
}

func TestConversion_SwapRefetchesQuote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.conversionService().NewRunner()

	runner.SetPair(ctx, money.NewPair("NGN", "KES"))
	runner.SetAmount(ctx, decimal.NewFromInt(100))
	quote, ok := runner.Flow().Quote()
	require.True(t, ok)

	runner.Swap(ctx)

	swapped, ok := runner.Flow().Quote()
	require.True(t, ok, "swap refetches for the inverted pair")
	assert.False(t, swapped.ExchangeRate.Equal(quote.ExchangeRate))
	assert.True(t, swapped.ExchangeRate.Round(4).Equal(decimal.RequireFromString("1.8416")),
		"got inverted rate %s", swapped.ExchangeRate)
}

func TestTransfer_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	method, err := env.paymentService().AddBankAccount(ctx, models.AddBankAccountRequest{
		Country:       "NG",
		Currency:      "NGN",
		BankCode:      "058",
		AccountNumber: "0123456789",
		AccountName:   "Ada Obi",
	})
	require.NoError(t, err)

	runner := env.transferService().NewRunner()
	runner.SetCurrency("NGN")
	runner.SetAmount(decimal.NewFromInt(500))
	runner.SetPaymentMethod(method.ID)
	runner.SetNarration("rent")

	require.NoError(t, runner.Proceed(ctx))
	runner.ConfirmSummary(ctx)
	require.Equal(t, flow.PhaseChallenge, runner.Flow().Phase())

	for _, key := range "12345" {
		runner.PressDigit(ctx, key)
	}

	require.NoError(t, runner.Flow().Err())
	assert.Equal(t, flow.PhaseReceipt, runner.Flow().Phase())

	receipt, err := runner.Receipt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "settled", receipt.Status)
	assert.True(t, receipt.FromAmount.Equal(decimal.NewFromInt(500)))
}

func TestTransfer_StepUpRequiredAboveThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	method, err := env.paymentService().AddBankAccount(ctx, models.AddBankAccountRequest{
		Country:       "NG",
		Currency:      "NGN",
		BankCode:      "044",
		AccountNumber: "9876543210",
	})
	require.NoError(t, err)

	runner := env.transferService().NewRunner()
	runner.SetCurrency("NGN")
	runner.SetAmount(decimal.NewFromInt(10000))
	runner.SetPaymentMethod(method.ID)

	require.NoError(t, runner.Proceed(ctx))
	runner.ConfirmSummary(ctx)

	// A full PIN must not auto-submit while the OTP is outstanding.
	for _, key := range "12345" {
		runner.PressDigit(ctx, key)
	}
	assert.Equal(t, flow.PhaseChallenge, runner.Flow().Phase())

	err = runner.SubmitChallenge(ctx, "", "")
	require.Error(t, err, "missing OTP is rejected client-side")

	require.NoError(t, runner.SubmitChallenge(ctx, "482913", ""))
	assert.Equal(t, flow.PhaseReceipt, runner.Flow().Phase())
}

func TestTransfer_IneligibleUserBlockedBeforeInitiate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.sandbox.SetEligibility(false, "KYC verification pending")

	runner := env.transferService().NewRunner()
	runner.SetCurrency("NGN")
	runner.SetAmount(decimal.NewFromInt(500))
	runner.SetPaymentMethod("pm-any")

	err := runner.Proceed(ctx)
	require.Error(t, err)

	var apiError *gateway.APIError
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, gateway.KindValidation, apiError.Kind)
	assert.Equal(t, "KYC verification pending", apiError.Message)
	assert.Equal(t, flow.PhaseInput, runner.Flow().Phase())
}

func TestPaymentSettings_WritesInvalidateListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.paymentService()

	initial, err := service.Methods(ctx)
	require.NoError(t, err)
	assert.Empty(t, initial.Methods)

	method, err := service.AddMobileMoney(ctx, models.AddMobileMoneyRequest{
		Country:      "KE",
		Currency:     "KES",
		ProviderCode: "mpesa",
		PhoneNumber:  "+254700000001",
	})
	require.NoError(t, err)
	assert.True(t, method.IsDefault, "first method becomes default")

	listed, err := service.Methods(ctx)
	require.NoError(t, err)
	require.Len(t, listed.Methods, 1, "write invalidates the cached listing")
	assert.Equal(t, method.ID, listed.Methods[0].ID)

	require.NoError(t, service.Delete(ctx, method.ID))

	afterDelete, err := service.Methods(ctx)
	require.NoError(t, err)
	assert.Empty(t, afterDelete.Methods, "deleted method no longer appears")
}

func TestPaymentSettings_SetDefaultKeepsSingleDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.paymentService()

	first, err := service.AddBankAccount(ctx, models.AddBankAccountRequest{
		Country: "NG", Currency: "NGN", BankCode: "044", AccountNumber: "1111111111",
	})
	require.NoError(t, err)
	second, err := service.AddBankAccount(ctx, models.AddBankAccountRequest{
		Country: "NG", Currency: "NGN", BankCode: "058", AccountNumber: "2222222222",
	})
	require.NoError(t, err)
	require.True(t, first.IsDefault)
	require.False(t, second.IsDefault)

	_, err = service.SetDefault(ctx, second.ID)
	require.NoError(t, err)

	listed, err := service.Methods(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, method := range listed.Methods {
		if method.IsDefault {
			defaults++
			assert.Equal(t, second.ID, method.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestPaymentSettings_Lookups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.paymentService()

	banks, err := service.Banks(ctx, "NG", "NGN")
	require.NoError(t, err)
	assert.NotEmpty(t, banks)

	providers, err := service.MobileMoneyProviders(ctx, "KE")
	require.NoError(t, err)
	assert.NotEmpty(t, providers)

	_, err = service.Banks(ctx, "", "")
	assert.ErrorIs(t, err, query.ErrNotEnabled, "lookup waits for a selected country")
}

func TestWallet_CreateInvalidatesBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.walletService()

	initial, err := service.Balances(ctx)
	require.NoError(t, err)
	for _, balance := range initial.Balances {
		require.NotEqual(t, "GHS", balance.Currency)
	}

	created, err := service.CreateWallet(ctx, "GHS")
	require.NoError(t, err)
	assert.Equal(t, "GHS", created.Currency)

	refreshed, err := service.Balances(ctx)
	require.NoError(t, err)
	found := false
	for _, balance := range refreshed.Balances {
		if balance.Currency == "GHS" {
			found = true
			assert.True(t, balance.Available.IsZero())
		}
	}
	assert.True(t, found, "new wallet appears after invalidation")

	_, err = service.CreateWallet(ctx, "GHS")
	assert.Error(t, err, "duplicate wallet is rejected")
}

func TestP2P_AdLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := p2p.NewService(env.client, testutils.MockLogger())

	request := models.P2PAdRequest{
		Asset:            "BTC",
		FiatCurrency:     "NGN",
		Price:            decimal.NewFromInt(95000000),
		Available:        decimal.RequireFromString("0.02"),
		MinOrder:         decimal.NewFromInt(5000),
		MaxOrder:         decimal.NewFromInt(500000),
		PaymentMethodIDs: []string{"pm-1"},
	}

	ad, err := service.CreateSellAd(ctx, request)
	require.NoError(t, err)
	assert.Equal(t, models.P2PAdSell, ad.Side)
	assert.Equal(t, "active", ad.Status)

	request.MaxOrder = decimal.NewFromInt(750000)
	updated, err := service.UpdateAd(ctx, ad.ID, request)
	require.NoError(t, err)
	assert.True(t, updated.MaxOrder.Equal(decimal.NewFromInt(750000)))
}

func TestP2P_InvertedLimitsRejectedClientSide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := p2p.NewService(env.client, testutils.MockLogger())

	_, err := service.CreateBuyAd(ctx, models.P2PAdRequest{
		Asset:            "BTC",
		FiatCurrency:     "NGN",
		Price:            decimal.NewFromInt(95000000),
		Available:        decimal.RequireFromString("0.02"),
		MinOrder:         decimal.NewFromInt(500000),
		MaxOrder:         decimal.NewFromInt(5000),
		PaymentMethodIDs: []string{"pm-1"},
	})

	var apiError *gateway.APIError
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, gateway.KindValidation, apiError.Kind)
	assert.Contains(t, apiError.Fields, "minOrder")
}

func TestRefData_CountriesServed(t *testing.T) {
	env := newTestEnv(t)

	var countries []models.Country
	err := env.client.Do(context.Background(), http.MethodGet, gateway.RouteCountries, nil, nil, nil, &countries)

	require.NoError(t, err)
	assert.NotEmpty(t, countries)

	var country models.Country
	err = env.client.Do(context.Background(), http.MethodGet, gateway.RouteCountryByCode,
		map[string]string{"code": "KE"}, nil, nil, &country)
	require.NoError(t, err)
	assert.Equal(t, "KES", country.Currency)
}

func TestTatumWebhook_RecordsPayload(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`{"txId":"0xabc","asset":"BTC","amount":"0.001"}`)
	response, err := http.Post(env.server.URL+"/crypto/webhooks/tatum", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)

	env.sandbox.mu.Lock()
	defer env.sandbox.mu.Unlock()
	require.Len(t, env.sandbox.webhookEvents, 1)
	assert.JSONEq(t, string(payload), string(env.sandbox.webhookEvents[0]))
}

func TestRateLimit_Returns429WhenExhausted(t *testing.T) {
	cfg := testutils.MockConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitBurst = 2
	cfg.RateLimitRequests = 1
	testLogger := testutils.MockLogger()

	rateLimiter := ratelimit.NewLimiter(cfg, testLogger)
	defer rateLimiter.Stop()

	handlers := NewHandlers(cfg, NewStore(cfg), testLogger).WithRateLimit(rateLimiter)
	server := httptest.NewServer(handlers.SetupRoutes())
	defer server.Close()

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		response, err := http.Get(server.URL + "/countries")
		require.NoError(t, err)
		response.Body.Close()
		statuses = append(statuses, response.StatusCode)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}
