package sandbox

import (
	"github.com/google/uuid"

	"github.com/rhinoxpay/rhinox-go/internal/models"
)

// PaymentMethods lists the registered payout methods.
func (store *Store) PaymentMethods() models.PaymentMethodsResponse {
	store.mu.Lock()
	defer store.mu.Unlock()

	response := models.PaymentMethodsResponse{Methods: []models.PaymentMethod{}}
	for _, method := range store.methods {
		response.Methods = append(response.Methods, method)
	}
	return response
}

// AddBankAccount registers a bank account payout method.
func (store *Store) AddBankAccount(req models.AddBankAccountRequest) (models.PaymentMethod, *apiFault) {
	fields := map[string]string{}
	if req.Country == "" {
		fields["country"] = "required"
	}
	if req.BankCode == "" {
		fields["bankCode"] = "required"
	}
	if req.AccountNumber == "" {
		fields["accountNumber"] = "required"
	}
	if len(fields) > 0 {
		return models.PaymentMethod{}, badRequest("missing bank account details", fields)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	method := models.PaymentMethod{
		ID:            uuid.NewString(),
		Kind:          models.PaymentMethodBankAccount,
		Country:       req.Country,
		Currency:      req.Currency,
		IsDefault:     len(store.methods) == 0,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	}
	store.methods[method.ID] = method
	return method, nil
}

// AddMobileMoney registers a mobile money payout method.
func (store *Store) AddMobileMoney(req models.AddMobileMoneyRequest) (models.PaymentMethod, *apiFault) {
	fields := map[string]string{}
	if req.Country == "" {
		fields["country"] = "required"
	}
	if req.ProviderCode == "" {
		fields["providerCode"] = "required"
	}
	if req.PhoneNumber == "" {
		fields["phoneNumber"] = "required"
	}
	if len(fields) > 0 {
		return models.PaymentMethod{}, badRequest("missing mobile money details", fields)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	method := models.PaymentMethod{
		ID:           uuid.NewString(),
		Kind:         models.PaymentMethodMobileMoney,
		Country:      req.Country,
		Currency:     req.Currency,
		IsDefault:    len(store.methods) == 0,
		ProviderCode: req.ProviderCode,
		PhoneNumber:  req.PhoneNumber,
	}
	store.methods[method.ID] = method
	return method, nil
}

// UpdatePaymentMethod edits a method's mutable fields.
func (store *Store) UpdatePaymentMethod(id string, req models.UpdatePaymentMethodRequest) (models.PaymentMethod, *apiFault) {
	store.mu.Lock()
	defer store.mu.Unlock()

	method, ok := store.methods[id]
	if !ok {
		return models.PaymentMethod{}, notFound("payment method not found")
	}

	if req.AccountNumber != "" {
		method.AccountNumber = req.AccountNumber
	}
	if req.AccountName != "" {
		method.AccountName = req.AccountName
	}
	if req.PhoneNumber != "" {
		method.PhoneNumber = req.PhoneNumber
	}
	store.methods[id] = method
	return method, nil
}

// DeletePaymentMethod removes a method permanently.
func (store *Store) DeletePaymentMethod(id string) *apiFault {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.methods[id]; !ok {
		return notFound("payment method not found")
	}
	delete(store.methods, id)
	return nil
}

// SetDefaultPaymentMethod marks one method as default and clears the
// flag on every other method; at most one default exists at a time.
func (store *Store) SetDefaultPaymentMethod(id string) (models.PaymentMethod, *apiFault) {
	store.mu.Lock()
	defer store.mu.Unlock()

	target, ok := store.methods[id]
	if !ok {
		return models.PaymentMethod{}, notFound("payment method not found")
	}

	for methodID, method := range store.methods {
		method.IsDefault = methodID == id
		store.methods[methodID] = method
	}
	target.IsDefault = true
	return target, nil
}
