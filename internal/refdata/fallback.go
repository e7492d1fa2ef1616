package refdata

import "github.com/rhinoxpay/rhinox-go/internal/models"

// PlaceholderFlagURL is used when a country carries no flag asset.
const PlaceholderFlagURL = "https://cdn.rhinoxpay.com/flags/placeholder.png"

// fallbackCountries is the single built-in dataset used when the remote
// list is empty or fails to load, so selectors are never left without
// options.
var fallbackCountries = []models.Country{
	{Code: "NG", Name: "Nigeria", Currency: "NGN", FlagURL: "https://cdn.rhinoxpay.com/flags/ng.png"},
	{Code: "KE", Name: "Kenya", Currency: "KES", FlagURL: "https://cdn.rhinoxpay.com/flags/ke.png"},
	{Code: "GH", Name: "Ghana", Currency: "GHS", FlagURL: "https://cdn.rhinoxpay.com/flags/gh.png"},
	{Code: "TZ", Name: "Tanzania", Currency: "TZS", FlagURL: "https://cdn.rhinoxpay.com/flags/tz.png"},
	{Code: "UG", Name: "Uganda", Currency: "UGX", FlagURL: "https://cdn.rhinoxpay.com/flags/ug.png"},
	{Code: "ZA", Name: "South Africa", Currency: "ZAR", FlagURL: "https://cdn.rhinoxpay.com/flags/za.png"},
	{Code: "RW", Name: "Rwanda", Currency: "RWF", FlagURL: "https://cdn.rhinoxpay.com/flags/rw.png"},
	{Code: "US", Name: "United States", Currency: "USD", FlagURL: "https://cdn.rhinoxpay.com/flags/us.png"},
	{Code: "GB", Name: "United Kingdom", Currency: "GBP", FlagURL: "https://cdn.rhinoxpay.com/flags/gb.png"},
}

// FallbackCountries returns a copy of the built-in dataset.
func FallbackCountries() []models.Country {
	countries := make([]models.Country, len(fallbackCountries))
	copy(countries, fallbackCountries)
	return countries
}
