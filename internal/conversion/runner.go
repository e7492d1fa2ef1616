package conversion

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rhinoxpay/rhinox-go/internal/flow"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/money"
	"github.com/rhinoxpay/rhinox-go/internal/query"
)

// Runner binds one guarded transaction flow to the conversion API. One
// runner backs one screen instance; abandoning the screen abandons the
// runner, and any late network result is dropped by the flow's own
// guards.
type Runner struct {
	flow    *flow.Flow
	service *Service
}

// NewRunner creates a conversion flow runner.
func (service *Service) NewRunner() *Runner {
	transactionFlow := flow.New(flow.Options{
		PinLength:      service.cfg.PinLength,
		MaxPinAttempts: service.cfg.MaxPinAttempts,
		Logger:         service.logger,
	})
	transactionFlow.OnSettled(func(reference string) {
		service.store.InvalidateDomain(query.DomainWallet)
		service.store.InvalidateKey(query.ConversionReceiptKey(reference))
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

// SetAmount updates the entered amount and fetches a quote when the
// input triple became complete. A response for superseded input is
// discarded by the sequence guard.
func (runner *Runner) SetAmount(ctx context.Context, amount decimal.Decimal) {
	command, ok := runner.flow.SetAmount(amount)
	if ok {
		runner.runQuote(ctx, command)
	}
}

// SetPair updates the currency pair.
func (runner *Runner) SetPair(ctx context.Context, pair money.Pair) {
	command, ok := runner.flow.SetPair(pair)
	if ok {
		runner.runQuote(ctx, command)
	}
}

// Swap exchanges the two currency roles, invalidating any in-flight
// quote.
func (runner *Runner) Swap(ctx context.Context) {
	command, ok := runner.flow.Swap()
	if ok {
		runner.runQuote(ctx, command)
	}
}

func (runner *Runner) runQuote(ctx context.Context, command flow.QuoteCommand) {
	quote, err := runner.service.Calculate(ctx, command.Input)
	runner.flow.ApplyQuote(command.Seq, quote, err)
}

// Proceed validates the finalized input and enters Summary.
func (runner *Runner) Proceed() error {
	return runner.flow.Proceed()
}

// ConfirmSummary issues the initiate mutation. On success the flow
// holds the reference and waits in Challenge for the PIN.
func (runner *Runner) ConfirmSummary(ctx context.Context) {
	if !runner.flow.ConfirmSummary() {
		return
	}

	input := runner.flow.Input()
	response, err := runner.service.Initiate(ctx, models.ConversionInitiateRequest{
		FromCurrency: input.Pair.From,
		ToCurrency:   input.Pair.To,
		Amount:       input.Amount,
	})
	runner.flow.ApplyInitiateResult(response.Reference, flow.StepUp{}, err)
}

// PressDigit appends a PIN digit; reaching the fixed length issues the
// confirm call automatically since conversions need no step-up.
func (runner *Runner) PressDigit(ctx context.Context, key rune) {
	command, submit := runner.flow.PressDigit(key)
	if submit {
		runner.runConfirm(ctx, command)
	}
}

// Backspace removes the last PIN digit.
func (runner *Runner) Backspace() {
	runner.flow.Backspace()
}

// BiometricUnlock substitutes a stored PIN when the store has one.
func (runner *Runner) BiometricUnlock(ctx context.Context, store flow.PinStore) bool {
	command, ok := runner.flow.BiometricUnlock(store)
	if ok {
		runner.runConfirm(ctx, command)
	}
	return ok
}

func (runner *Runner) runConfirm(ctx context.Context, command flow.ConfirmCommand) {
	_, err := runner.service.Confirm(ctx, models.ConversionConfirmRequest{
		Reference: command.Reference,
		Pin:       command.Pin,
	})
	runner.flow.ApplyConfirmResult(err)
}

// Receipt fetches the settled receipt once the flow reached it.
func (runner *Runner) Receipt(ctx context.Context) (models.Receipt, error) {
	return runner.service.Receipt(ctx, runner.flow.Reference())
}

// Cancel abandons the flow.
func (runner *Runner) Cancel() {
	runner.flow.Cancel()
}
