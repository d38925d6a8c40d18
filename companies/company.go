package companies

import "errors"

var ErrCompanyNotFound = errors.New("company not found")

// Credentials holds the vendor web-service access data for one company.
// Records are owned by the company registry (the back-office CRUD layer) and
// are immutable from this service's point of view.
type Credentials struct {
	ID          int    `json:"id"`
	SourceURL   string `json:"source_url"`   // Vendor base URL (per company)
	Username    string `json:"username"`     // Vendor web-service user
	APIKey      string `json:"api_key"`      // Vendor API key
	APISecret   string `json:"api_secret"`   // Vendor API secret, sent as the login password
	CompanyCode string `json:"company_code"` // Vendor-side company identifier (firma_kodu)
}
