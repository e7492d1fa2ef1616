package sandbox

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rhinoxpay/rhinox-go/internal/config"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
	"github.com/rhinoxpay/rhinox-go/internal/middleware"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/ratelimit"
)

// Handlers contains all sandbox HTTP handlers
type Handlers struct {
	store       *Store
	logger      *logger.Logger
	cfg         *config.Config
	rateLimiter *ratelimit.Limiter
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, store *Store, logger *logger.Logger) *Handlers {
	return &Handlers{
		store:  store,
		logger: logger,
		cfg:    cfg,
	}
}

// WithRateLimit attaches the rate limiter after initialization
func (handlers *Handlers) WithRateLimit(rateLimiter *ratelimit.Limiter) *Handlers {
	handlers.rateLimiter = rateLimiter
	return handlers
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())

	if handlers.rateLimiter != nil {
		router.Use(handlers.rateLimitMiddleware())
	}

	router.GET("/countries", handlers.GetCountries)
	router.GET("/countries/:code", handlers.GetCountryByCode)

	router.POST("/wallets/create", handlers.CreateWallet)
	router.GET("/wallets/balances", handlers.GetBalances)

	router.GET("/conversion/calculate", handlers.CalculateConversion)
	router.POST("/conversion/initiate", handlers.InitiateConversion)
	router.POST("/conversion/confirm", handlers.ConfirmConversion)
	router.GET("/conversion/receipt/:reference", handlers.GetConversionReceipt)

	router.GET("/payment-settings", handlers.GetPaymentMethods)
	router.POST("/payment-settings/bank-account", handlers.AddBankAccount)
	router.POST("/payment-settings/mobile-money", handlers.AddMobileMoney)
	router.PUT("/payment-settings/:id", handlers.UpdatePaymentMethod)
	router.DELETE("/payment-settings/:id", handlers.DeletePaymentMethod)
	router.POST("/payment-settings/:id/set-default", handlers.SetDefaultPaymentMethod)
	router.GET("/payment-settings/banks", handlers.GetBanks)
	router.GET("/payment-settings/mobile-money-providers", handlers.GetMobileMoneyProviders)

	router.POST("/transfer/initiate", handlers.InitiateTransfer)
	router.POST("/transfer/verify", handlers.VerifyTransfer)
	router.GET("/transfer/eligibility", handlers.GetTransferEligibility)
	router.GET("/transfer/receipt/:id", handlers.GetTransferReceipt)

	router.POST("/p2p/ads/buy", handlers.CreateBuyAd)
	router.POST("/p2p/ads/sell", handlers.CreateSellAd)
	router.PUT("/p2p/ads/:id", handlers.UpdateAd)

	router.POST("/crypto/webhooks/tatum", handlers.TatumWebhook)

	return router
}

// errorResponse is the structured error payload of the API.
type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (handlers *Handlers) writeFault(context *gin.Context, fault *apiFault) {
	context.JSON(fault.Status, errorResponse{Message: fault.Message, Fields: fault.Fields})
}

func (handlers *Handlers) writeBadRequest(context *gin.Context, message string) {
	context.JSON(http.StatusBadRequest, errorResponse{Message: message})
}

// GetCountries serves the country reference list
func (handlers *Handlers) GetCountries(context *gin.Context) {
	context.JSON(http.StatusOK, handlers.store.Countries())
}

// GetCountryByCode serves a single country by ISO code
func (handlers *Handlers) GetCountryByCode(context *gin.Context) {
	code := context.Param("code")
	for _, country := range handlers.store.Countries() {
		if country.Code == code {
			context.JSON(http.StatusOK, country)
			return
		}
	}
	handlers.writeFault(context, notFound("country not found"))
}

// CreateWallet opens a wallet for a currency
func (handlers *Handlers) CreateWallet(context *gin.Context) {
	var request models.WalletCreateRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	wallet, fault := handlers.store.CreateWallet(request.Currency)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, wallet)
}

// GetBalances lists wallet balances
func (handlers *Handlers) GetBalances(context *gin.Context) {
	context.JSON(http.StatusOK, handlers.store.Balances())
}

// CalculateConversion serves a quote for the input triple
func (handlers *Handlers) CalculateConversion(context *gin.Context) {
	amount, err := decimal.NewFromString(context.Query("amount"))
	if err != nil {
		handlers.writeBadRequest(context, "invalid amount")
		return
	}

	quote, fault := handlers.store.Quote(context.Query("fromCurrency"), context.Query("toCurrency"), amount)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, quote)
}

// InitiateConversion reserves a conversion
func (handlers *Handlers) InitiateConversion(context *gin.Context) {
	var request models.ConversionInitiateRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	reference, fault := handlers.store.InitiateConversion(request.FromCurrency, request.ToCurrency, request.Amount)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, models.ConversionInitiateResponse{Reference: reference})
}

// ConfirmConversion settles a pending conversion
func (handlers *Handlers) ConfirmConversion(context *gin.Context) {
	var request models.ConversionConfirmRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	receipt, fault := handlers.store.ConfirmConversion(request.Reference, request.Pin)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, receipt)
}

// GetConversionReceipt serves a settled conversion receipt
func (handlers *Handlers) GetConversionReceipt(context *gin.Context) {
	receipt, fault := handlers.store.Receipt(context.Param("reference"))
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, receipt)
}

// GetPaymentMethods lists payout methods
func (handlers *Handlers) GetPaymentMethods(context *gin.Context) {
	context.JSON(http.StatusOK, handlers.store.PaymentMethods())
}

// AddBankAccount registers a bank account payout method
func (handlers *Handlers) AddBankAccount(context *gin.Context) {
	var request models.AddBankAccountRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	method, fault := handlers.store.AddBankAccount(request)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, method)
}

// AddMobileMoney registers a mobile money payout method
func (handlers *Handlers) AddMobileMoney(context *gin.Context) {
	var request models.AddMobileMoneyRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	method, fault := handlers.store.AddMobileMoney(request)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, method)
}

// UpdatePaymentMethod edits a payout method
func (handlers *Handlers) UpdatePaymentMethod(context *gin.Context) {
	var request models.UpdatePaymentMethodRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	method, fault := handlers.store.UpdatePaymentMethod(context.Param("id"), request)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, method)
}

// DeletePaymentMethod removes a payout method
func (handlers *Handlers) DeletePaymentMethod(context *gin.Context) {
	if fault := handlers.store.DeletePaymentMethod(context.Param("id")); fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.Status(http.StatusNoContent)
}

// SetDefaultPaymentMethod marks one method as default
func (handlers *Handlers) SetDefaultPaymentMethod(context *gin.Context) {
	method, fault := handlers.store.SetDefaultPaymentMethod(context.Param("id"))
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, method)
}

// GetBanks lists selectable banks
func (handlers *Handlers) GetBanks(context *gin.Context) {
	context.JSON(http.StatusOK, handlers.store.Banks(context.Query("countryCode")))
}

// GetMobileMoneyProviders lists selectable mobile money providers
func (handlers *Handlers) GetMobileMoneyProviders(context *gin.Context) {
	context.JSON(http.StatusOK, handlers.store.MobileMoneyProviders(context.Query("countryCode")))
}

// InitiateTransfer reserves a transfer
func (handlers *Handlers) InitiateTransfer(context *gin.Context) {
	var request models.TransferInitiateRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	response, fault := handlers.store.InitiateTransfer(request)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, response)
}

// VerifyTransfer settles a pending transfer
func (handlers *Handlers) VerifyTransfer(context *gin.Context) {
	var request models.TransferVerifyRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	receipt, fault := handlers.store.VerifyTransfer(request)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, receipt)
}

// GetTransferEligibility reports transfer eligibility
func (handlers *Handlers) GetTransferEligibility(context *gin.Context) {
	context.JSON(http.StatusOK, handlers.store.Eligibility())
}

// GetTransferReceipt serves a settled transfer receipt
func (handlers *Handlers) GetTransferReceipt(context *gin.Context) {
	receipt, fault := handlers.store.Receipt(context.Param("id"))
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, receipt)
}

// CreateBuyAd persists a buy ad
func (handlers *Handlers) CreateBuyAd(context *gin.Context) {
	handlers.createAd(context, models.P2PAdBuy)
}

// CreateSellAd persists a sell ad
func (handlers *Handlers) CreateSellAd(context *gin.Context) {
	handlers.createAd(context, models.P2PAdSell)
}

func (handlers *Handlers) createAd(context *gin.Context, side models.P2PAdSide) {
	var request models.P2PAdRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	ad, fault := handlers.store.CreateAd(side, request)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, ad)
}

// UpdateAd edits an existing ad
func (handlers *Handlers) UpdateAd(context *gin.Context) {
	var request models.P2PAdRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeBadRequest(context, "invalid request body")
		return
	}

	ad, fault := handlers.store.UpdateAd(context.Param("id"), request)
	if fault != nil {
		handlers.writeFault(context, fault)
		return
	}
	context.JSON(http.StatusOK, ad)
}

// TatumWebhook records an inbound blockchain provider event. The
// payload is an opaque passthrough.
func (handlers *Handlers) TatumWebhook(context *gin.Context) {
	payload, err := io.ReadAll(context.Request.Body)
	if err != nil {
		handlers.writeBadRequest(context, "unreadable payload")
		return
	}
	handlers.store.RecordWebhook(json.RawMessage(payload))
	context.Status(http.StatusOK)
}

// rateLimitMiddleware provides rate limiting using Gin middleware
func (handlers *Handlers) rateLimitMiddleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		clientIP := handlers.rateLimiter.GetClientIP(context.Request)

		if !handlers.rateLimiter.Allow(clientIP) {
			handlers.logger.Warnf("Rate limit exceeded for IP: %s", clientIP)
			context.Header("X-RateLimit-Limit", strconv.Itoa(handlers.rateLimiter.Configuration.RateLimitRequests))
			context.Header("X-RateLimit-Remaining", "0")
			context.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(handlers.rateLimiter.Configuration.RateLimitWindow).Unix(), 10))
			context.JSON(http.StatusTooManyRequests, errorResponse{Message: "Rate limit exceeded"})
			context.Abort()
			return
		}

		context.Next()
	}
}
