package companies

// Repo resolves vendor credentials for a company. Backed by the back-office
// company registry, which lives outside this service.
type Repo interface {
	// Get returns the credentials for a company, or ErrCompanyNotFound.
	Get(companyID int) (*Credentials, error)
}
