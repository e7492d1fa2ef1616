package models

// Country is read-only reference data used to resolve currency codes,
// flags and display names.
type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	FlagURL  string `json:"flagUrl,omitempty"`
}
