package flow

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rhinoxpay/rhinox-go/internal/gateway"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
	"github.com/rhinoxpay/rhinox-go/internal/models"
	"github.com/rhinoxpay/rhinox-go/internal/money"
)

// Phase is the tagged state of a guarded transaction. Transitions are
// linear with two recovery loops: a failed initiate returns to Summary
// and a failed confirm returns to Challenge.
type Phase int

const (
	PhaseInput Phase = iota
	PhaseQuoting
	PhaseSummary
	PhaseInitiating
	PhaseChallenge
	PhaseConfirming
	PhaseSettled
	PhaseReceipt
	PhaseCancelled
)

// String returns a readable phase name for logs.
func (phase Phase) String() string {
	switch phase {
	case PhaseInput:
		return "input"
	case PhaseQuoting:
		return "quoting"
	case PhaseSummary:
		return "summary"
	case PhaseInitiating:
		return "initiating"
	case PhaseChallenge:
		return "challenge"
	case PhaseConfirming:
		return "confirming"
	case PhaseSettled:
		return "settled"
	case PhaseReceipt:
		return "receipt"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StepUp lists the extra credentials a flow requires beyond the PIN.
type StepUp struct {
	EmailOtp      bool
	Authenticator bool
}

// Required reports whether any step-up credential is needed.
func (stepUp StepUp) Required() bool {
	return stepUp.EmailOtp || stepUp.Authenticator
}

// PinStore supplies a previously stored PIN for the biometric shortcut.
// The SDK ships no implementation that persists a PIN; integrators who
// accept the risk provide their own.
type PinStore interface {
	StoredPin() (string, bool)
}

// Options configure one guarded transaction flow.
type Options struct {
	PinLength      int
	MaxPinAttempts int

	// RequiredFields are recipient/method fields that must be populated
	// before Summary.
	RequiredFields []string

	// LimitBased flows (P2P ad creation) must satisfy min < max.
	LimitBased bool

	// SkipQuote is set by flows that never display a rate preview.
	SkipQuote bool

	Logger *logger.Logger
}

// QuoteCommand asks the owner of the flow to fetch a quote. Seq is
// echoed back through ApplyQuote so late responses for older input are
// discarded.
type QuoteCommand struct {
	Seq   uint64
	Input models.QuoteInput
}

// ConfirmCommand asks the owner to issue the confirm/verify call.
type ConfirmCommand struct {
	Reference         string
	Pin               string
	EmailOtp          string
	AuthenticatorCode string
}

// ConfirmOutcome reports what ApplyConfirmResult decided.
type ConfirmOutcome int

const (
	// ConfirmRetained: confirm failed, reference kept, PIN cleared,
	// user may retry from Challenge.
	ConfirmRetained ConfirmOutcome = iota
	// ConfirmLockedOut: attempt limit reached, reference discarded,
	// flow returned to Summary for re-initiation.
	ConfirmLockedOut
	// ConfirmSettled: confirm succeeded, flow reached Receipt.
	ConfirmSettled
	// ConfirmIgnored: result arrived for a flow no longer confirming.
	ConfirmIgnored
)

// Flow drives one money-movement action through amount entry, quote,
// summary, PIN challenge and settlement. It is a pure state machine:
// events come in through methods, network work goes out as commands,
// and the owner feeds results back. All methods are safe for
// concurrent use.
type Flow struct {
	mu sync.Mutex

	opts  Options
	phase Phase

	// Input state
	amount decimal.Decimal
	pair   money.Pair
	fields map[string]string
	min    decimal.Decimal
	max    decimal.Decimal

	// Quote state
	quoteSeq   uint64
	quote      *models.Quote
	quoteInput models.QuoteInput

	// Transaction state
	reference   string
	stepUp      StepUp
	pin         *PinBuffer
	pinAttempts int

	// onSettled runs dependent-cache invalidation once, on settlement.
	onSettled func(reference string)

	lastErr error
}

// New creates a flow in the Input phase.
func New(opts Options) *Flow {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.MaxPinAttempts < 1 {
		opts.MaxPinAttempts = 3
	}
	return &Flow{
		opts:   opts,
		phase:  PhaseInput,
		fields: make(map[string]string),
		pin:    NewPinBuffer(opts.PinLength),
	}
}

// OnSettled registers the invalidation hook run when the flow settles.
func (flow *Flow) OnSettled(hook func(reference string)) {
	flow.mu.Lock()
	flow.onSettled = hook
	flow.mu.Unlock()
}

// Phase returns the current phase.
func (flow *Flow) Phase() Phase {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.phase
}

// Reference returns the transaction reference, if one exists.
func (flow *Flow) Reference() string {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.reference
}

// Quote returns the quote for the current input, if settled.
func (flow *Flow) Quote() (models.Quote, bool) {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	if flow.quote == nil {
		return models.Quote{}, false
	}
	return *flow.quote, true
}

// Pin returns the digits entered so far.
func (flow *Flow) Pin() string {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.pin.Value()
}

// Err returns the most recent surfaced error, if any.
func (flow *Flow) Err() error {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.lastErr
}

// InputSnapshot is the finalized input a runner turns into an initiate
// request.
type InputSnapshot struct {
	Amount decimal.Decimal
	Pair   money.Pair
	Fields map[string]string
	Min    decimal.Decimal
	Max    decimal.Decimal
}

// Input returns a copy of the current input state.
func (flow *Flow) Input() InputSnapshot {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	fields := make(map[string]string, len(flow.fields))
	for name, value := range flow.fields {
		fields[name] = value
	}
	return InputSnapshot{
		Amount: flow.amount,
		Pair:   flow.pair,
		Fields: fields,
		Min:    flow.min,
		Max:    flow.max,
	}
}

// SetAmount updates the entered amount. Returns a quote command when
// the input triple became complete.
func (flow *Flow) SetAmount(amount decimal.Decimal) (QuoteCommand, bool) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if !flow.editing() {
		return QuoteCommand{}, false
	}
	flow.amount = amount
	return flow.maybeQuoteLocked()
}

// SetPair updates the currency pair. Returns a quote command when the
// input triple became complete.
func (flow *Flow) SetPair(pair money.Pair) (QuoteCommand, bool) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if !flow.editing() {
		return QuoteCommand{}, false
	}
	flow.pair = pair
	return flow.maybeQuoteLocked()
}

// Swap exchanges the two currency roles and invalidates any in-flight
// quote.
func (flow *Flow) Swap() (QuoteCommand, bool) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if !flow.editing() {
		return QuoteCommand{}, false
	}
	flow.pair = flow.pair.Swap()
	return flow.maybeQuoteLocked()
}

// SetField sets a recipient/method field.
func (flow *Flow) SetField(name, value string) {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	if flow.editing() {
		flow.fields[name] = value
	}
}

// Field reads a recipient/method field.
func (flow *Flow) Field(name string) string {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.fields[name]
}

// SetLimits sets the min/max order bounds of a limit-based flow.
func (flow *Flow) SetLimits(min, max decimal.Decimal) {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	if flow.editing() {
		flow.min = min
		flow.max = max
	}
}

// editing reports whether input edits are currently allowed.
func (flow *Flow) editing() bool {
	return flow.phase == PhaseInput || flow.phase == PhaseQuoting
}

// maybeQuoteLocked decides whether the changed input warrants a new
// quote. Any change invalidates the current quote; a new request fires
// only when the triple is complete and the currencies differ.
func (flow *Flow) maybeQuoteLocked() (QuoteCommand, bool) {
	flow.quote = nil
	flow.quoteSeq++

	if flow.opts.SkipQuote {
		return QuoteCommand{}, false
	}
	if !flow.pair.Complete() || flow.pair.Same() || !flow.amount.IsPositive() {
		flow.phase = PhaseInput
		return QuoteCommand{}, false
	}

	flow.phase = PhaseQuoting
	flow.quoteInput = models.QuoteInput{
		FromCurrency: flow.pair.From,
		ToCurrency:   flow.pair.To,
		Amount:       flow.amount,
	}
	flow.opts.Logger.Debugf("quote requested: seq=%d %s->%s", flow.quoteSeq, flow.pair.From, flow.pair.To)
	return QuoteCommand{Seq: flow.quoteSeq, Input: flow.quoteInput}, true
}

// ApplyQuote feeds a quote response back. Last request wins: a response
// whose sequence no longer matches the current input is silently
// discarded. A quote error keeps the user in Input with an inline
// error and no state corruption.
func (flow *Flow) ApplyQuote(seq uint64, quote models.Quote, err error) bool {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if seq != flow.quoteSeq || flow.phase != PhaseQuoting {
		flow.opts.Logger.Debugf("stale quote discarded: seq=%d current=%d", seq, flow.quoteSeq)
		return false
	}

	if err != nil {
		flow.phase = PhaseInput
		flow.lastErr = err
		return true
	}

	flow.quote = &quote
	flow.lastErr = nil
	flow.phase = PhaseInput
	return true
}

// Proceed moves from Input to Summary after validating the finalized
// input. Violations are rejected client-side; no network call is made.
func (flow *Flow) Proceed() error {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if !flow.editing() {
		return gateway.NewValidationError("cannot proceed from "+flow.phase.String(), nil)
	}

	fields := map[string]string{}
	if !flow.amount.IsPositive() {
		fields["amount"] = "amount must be greater than zero"
	}
	for _, required := range flow.opts.RequiredFields {
		if flow.fields[required] == "" {
			fields[required] = "required"
		}
	}
	if flow.opts.LimitBased && flow.min.GreaterThanOrEqual(flow.max) {
		fields["minOrder"] = "minimum order must be below maximum order"
	}
	if !flow.opts.SkipQuote {
		if flow.quote == nil {
			fields["quote"] = "quote not available yet"
		}
	}
	if len(fields) > 0 {
		err := gateway.NewValidationError("invalid input", fields)
		flow.lastErr = err
		return err
	}

	flow.lastErr = nil
	flow.phase = PhaseSummary
	return nil
}

// ConfirmSummary is the explicit user confirmation on the Summary
// screen. It moves the flow to Initiating; the owner then issues the
// initiate mutation and reports back through ApplyInitiateResult.
func (flow *Flow) ConfirmSummary() bool {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.phase != PhaseSummary {
		return false
	}
	flow.phase = PhaseInitiating
	return true
}

// ApplyInitiateResult stores the transaction reference on success and
// enters Challenge. On failure the flow returns to Summary with the
// error shown; the user retries by re-pressing the action.
func (flow *Flow) ApplyInitiateResult(reference string, stepUp StepUp, err error) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.phase != PhaseInitiating {
		return
	}

	if err != nil {
		flow.phase = PhaseSummary
		flow.lastErr = err
		return
	}

	flow.reference = reference
	flow.stepUp = stepUp
	flow.pinAttempts = 0
	flow.pin.Clear()
	flow.lastErr = nil
	flow.phase = PhaseChallenge
	flow.opts.Logger.Infof("transaction initiated: reference=%s", reference)
}

// PressDigit appends one digit to the PIN. When the PIN reaches its
// fixed length and no step-up credential is required, the confirm call
// is issued automatically.
func (flow *Flow) PressDigit(key rune) (ConfirmCommand, bool) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.phase != PhaseChallenge {
		return ConfirmCommand{}, false
	}

	flow.pin.Press(key)
	if flow.pin.Full() && !flow.stepUp.Required() {
		return flow.beginConfirmLocked("", "")
	}
	return ConfirmCommand{}, false
}

// Backspace removes the last PIN digit.
func (flow *Flow) Backspace() {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	if flow.phase == PhaseChallenge {
		flow.pin.Backspace()
	}
}

// SubmitChallenge submits the PIN together with step-up codes. Used by
// flows that require step-up verification, where auto-submit on the
// last digit is disabled.
func (flow *Flow) SubmitChallenge(emailOtp, authenticatorCode string) (ConfirmCommand, error) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.phase != PhaseChallenge {
		return ConfirmCommand{}, gateway.NewValidationError("no challenge in progress", nil)
	}

	fields := map[string]string{}
	if !flow.pin.Full() {
		fields["pin"] = "PIN is incomplete"
	}
	if flow.stepUp.EmailOtp && emailOtp == "" {
		fields["emailOtp"] = "required"
	}
	if flow.stepUp.Authenticator && authenticatorCode == "" {
		fields["authenticatorCode"] = "required"
	}
	if len(fields) > 0 {
		err := gateway.NewValidationError("incomplete challenge", fields)
		flow.lastErr = err
		return ConfirmCommand{}, err
	}

	command, _ := flow.beginConfirmLocked(emailOtp, authenticatorCode)
	return command, nil
}

// BiometricUnlock substitutes a stored PIN after successful device
// biometrics. It only works when the store actually holds a PIN;
// otherwise the flow stays in Challenge for manual entry.
func (flow *Flow) BiometricUnlock(store PinStore) (ConfirmCommand, bool) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	if flow.phase != PhaseChallenge || store == nil {
		return ConfirmCommand{}, false
	}
	storedPin, ok := store.StoredPin()
	if !ok || len(storedPin) != flow.opts.PinLength {
		return ConfirmCommand{}, false
	}
	if flow.stepUp.Required() {
		// Step-up codes cannot come from the store; manual entry only.
		return ConfirmCommand{}, false
	}

	flow.pin.Clear()
	for _, digit := range storedPin {
		flow.pin.Press(digit)
	}
	return flow.beginConfirmLocked("", "")
}

func (flow *Flow) beginConfirmLocked(emailOtp, authenticatorCode string) (ConfirmCommand, bool) {
	flow.phase = PhaseConfirming
	return ConfirmCommand{
		Reference:         flow.reference,
		Pin:               flow.pin.Value(),
		EmailOtp:          emailOtp,
		AuthenticatorCode: authenticatorCode,
	}, true
}

// ApplyConfirmResult feeds the confirm/verify outcome back. A rejection
// clears the PIN but preserves the reference so the user retries
// without re-initiating, until the attempt limit forces re-initiation.
func (flow *Flow) ApplyConfirmResult(err error) ConfirmOutcome {
	flow.mu.Lock()

	if flow.phase != PhaseConfirming {
		flow.mu.Unlock()
		return ConfirmIgnored
	}

	if err != nil {
		flow.pin.Clear()
		flow.lastErr = err
		flow.pinAttempts++
		if flow.pinAttempts >= flow.opts.MaxPinAttempts {
			flow.reference = ""
			flow.phase = PhaseSummary
			flow.opts.Logger.Warnf("PIN attempt limit reached, re-initiation required")
			flow.mu.Unlock()
			return ConfirmLockedOut
		}
		flow.phase = PhaseChallenge
		flow.mu.Unlock()
		return ConfirmRetained
	}

	flow.lastErr = nil
	flow.phase = PhaseSettled
	reference := flow.reference
	hook := flow.onSettled
	flow.mu.Unlock()

	// Dependent caches are invalidated outside the lock; the hook may
	// call back into shared stores.
	if hook != nil {
		hook(reference)
	}

	flow.mu.Lock()
	if flow.phase == PhaseSettled {
		flow.phase = PhaseReceipt
	}
	flow.mu.Unlock()
	return ConfirmSettled
}

// Cancel abandons the flow. Late quote or mutation results that arrive
// afterwards are discarded by the phase and sequence guards.
func (flow *Flow) Cancel() {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	flow.quoteSeq++
	flow.quote = nil
	flow.reference = ""
	flow.pin.Clear()
	flow.phase = PhaseCancelled
}
