package config

import (
	"os"
)

// StanbicConfig holds the credentials for the Stanbic biller API. Adapters
// receive it at construction so they can be tested against fakes.
type StanbicConfig struct {
	BaseURL       string
	InstitutionID string
	Token         string
}

// SelcomConfig holds the credentials for the Selcom utility-payment API.
// VendorID and VendorPIN are injected into signed request bodies by the
// adapter, never supplied by callers.
type SelcomConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	VendorID  string
	VendorPIN string
}

func LoadStanbic() StanbicConfig {
	return StanbicConfig{
		BaseURL:       os.Getenv("STANBIC_API_URL"),
		InstitutionID: os.Getenv("STANBIC_INSTITUTION_ID"),
		Token:         os.Getenv("STANBIC_TOKEN"),
	}
}

func LoadSelcom() SelcomConfig {
	return SelcomConfig{
		BaseURL:   os.Getenv("SELCOM_API_URL"),
		APIKey:    os.Getenv("SELCOM_API_KEY"),
		APISecret: os.Getenv("SELCOM_API_SECRET"),
		VendorID:  os.Getenv("SELCOM_VENDOR_ID"),
		VendorPIN: os.Getenv("SELCOM_VENDOR_PIN"),
	}
}

// Getenv returns the value of key, or fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
