package transfer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rhinoxpay/rhinox-go/internal/flow"
	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/money"
	"github.com/rhinoxpay/rhinox-go/internal/query"
)

// Field names of the transfer flow input.
const (
	FieldPaymentMethodID = "paymentMethodId"
	FieldNarration       = "narration"
)

// Runner binds a guarded transaction flow to the transfer API.
// Transfers move one currency to a payout method, so no quote phase is
// involved, and the server may demand step-up verification.
type Runner struct {
	flow    *flow.Flow
	service *Service
}

// NewRunner creates a transfer flow runner.
func (service *Service) NewRunner() *Runner {
	transactionFlow := flow.New(flow.Options{
		PinLength:      service.cfg.PinLength,
		MaxPinAttempts: service.cfg.MaxPinAttempts,
		RequiredFields: []string{FieldPaymentMethodID},
		SkipQuote:      true,
		Logger:         service.logger,
	})
	transactionFlow.OnSettled(func(reference string) {
		service.store.InvalidateDomain(query.DomainWallet)
		service.store.InvalidateKey(query.TransferReceiptKey(reference))
	})

	return &Runner{
		flow:    transactionFlow,
		service: service,
	}
}

// Flow exposes the underlying state machine for observation.
func (runner *Runner) Flow() *flow.Flow {
	return runner.flow
}

// SetAmount updates the entered amount.
func (runner *Runner) SetAmount(amount decimal.Decimal) {
	runner.flow.SetAmount(amount)
}

// SetCurrency fixes the transfer currency. Both sides of the pair are
// the same; the flow's quote gate stays closed.
func (runner *Runner) SetCurrency(currency string) {
	runner.flow.SetPair(money.NewPair(currency, currency))
}

// SetPaymentMethod selects the payout destination.
func (runner *Runner) SetPaymentMethod(id string) {
	runner.flow.SetField(FieldPaymentMethodID, id)
}

// SetNarration sets the optional transfer narration.
func (runner *Runner) SetNarration(narration string) {
	runner.flow.SetField(FieldNarration, narration)
}

// Proceed validates the input and enters Summary. It also checks
// transfer eligibility so an ineligible user is blocked before any
// initiate call.
func (runner *Runner) Proceed(ctx context.Context) error {
	eligibility, err := runner.service.Eligibility(ctx)
	if err != nil {
		return err
	}
	if !eligibility.Eligible {
		return gateway.NewValidationError(eligibility.Reason, map[string]string{"eligibility": eligibility.Reason})
	}
	return runner.flow.Proceed()
}

// ConfirmSummary issues the initiate mutation and records which
// step-up credentials the verify call must carry.
func (runner *Runner) ConfirmSummary(ctx context.Context) {
	if !runner.flow.ConfirmSummary() {
		return
	}

	input := runner.flow.Input()
	response, err := runner.service.Initiate(ctx, models.TransferInitiateRequest{
		Currency:        input.Pair.From,
		Amount:          input.Amount,
		PaymentMethodID: input.Fields[FieldPaymentMethodID],
		Narration:       input.Fields[FieldNarration],
	})
	runner.flow.ApplyInitiateResult(response.Reference, flow.StepUp{
		EmailOtp:      response.RequiresEmailOtp,
		Authenticator: response.RequiresAuthenticator,
	}, err)
}

// PressDigit appends a PIN digit. When step-up is required the full
// PIN does not auto-submit; SubmitChallenge carries the codes.
func (runner *Runner) PressDigit(ctx context.Context, key rune) {
	command, submit := runner.flow.PressDigit(key)
	if submit {
		runner.runVerify(ctx, command)
	}
}

// Backspace removes the last PIN digit.
func (runner *Runner) Backspace() {
	runner.flow.Backspace()
}

// SubmitChallenge submits the PIN with step-up codes.
func (runner *Runner) SubmitChallenge(ctx context.Context, emailOtp, authenticatorCode string) error {
	command, err := runner.flow.SubmitChallenge(emailOtp, authenticatorCode)
	if err != nil {
		return err
	}
	runner.runVerify(ctx, command)
	return nil
}

func (runner *Runner) runVerify(ctx context.Context, command flow.ConfirmCommand) {
	_, err := runner.service.Verify(ctx, models.TransferVerifyRequest{
		Reference:         command.Reference,
		Pin:               command.Pin,
		EmailOtp:          command.EmailOtp,
		AuthenticatorCode: command.AuthenticatorCode,
	})
	runner.flow.ApplyConfirmResult(err)
}

// Receipt fetches the settled transfer receipt.
func (runner *Runner) Receipt(ctx context.Context) (models.Receipt, error) {
	return runner.service.Receipt(ctx, runner.flow.Reference())
}

// Cancel abandons the flow.
func (runner *Runner) Cancel() {
	runner.flow.Cancel()
}
