package proxy

import "time"

// SessionContext is the per-caller mediation state: which company and period
// the caller is working in, and the vendor session token currently held for
// them. One instance exists per caller session; it is owned exclusively by
// that caller's session store and mutated read-modify-write per request.
type SessionContext struct {
	CallerSessionID     string    `json:"caller_session_id"`
	VendorSessionToken  string    `json:"vendor_session_token,omitempty"`
	SelectedCompanyID   int       `json:"selected_company_id"`  // 0 = no company selected
	SelectedPeriodCode  int       `json:"selected_period_code"` // 0 = vendor default period
	LastAuthenticatedAt time.Time `json:"last_authenticated_at"`
}

// CompanySelected reports whether the caller has selected a company.
func (sc *SessionContext) CompanySelected() bool {
	return sc.SelectedCompanyID != 0
}

// Reset clears the vendor token and the company/period selection, returning
// the context to its pre-selection state. Used on logout.
func (sc *SessionContext) Reset() {
	sc.VendorSessionToken = ""
	sc.SelectedCompanyID = 0
	sc.SelectedPeriodCode = 0
	sc.LastAuthenticatedAt = time.Time{}
}
