package server

import "sync"

// CompanyMemberships backs the proxy's access-check boundary with the
// company lists asserted by caller tokens. RequireAuth records the claim on
// every authenticated request, so a membership revoked upstream disappears
// as soon as the old token expires.
type CompanyMemberships struct {
	mu     sync.RWMutex
	byUser map[string]map[int]bool
}

// NewCompanyMemberships creates an empty membership cache.
func NewCompanyMemberships() *CompanyMemberships {
	return &CompanyMemberships{byUser: make(map[string]map[int]bool)}
}

// Record replaces the recorded company list for a user.
func (m *CompanyMemberships) Record(userID string, companyIDs []int) {
	memberships := make(map[int]bool, len(companyIDs))
	for _, id := range companyIDs {
		memberships[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[userID] = memberships
}

// UserMayAccessCompany implements proxy.AccessChecker.
func (m *CompanyMemberships) UserMayAccessCompany(userID string, companyID int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byUser[userID][companyID]
}
