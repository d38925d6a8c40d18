package callersession

import "github.com/erpbridge/go-ws-proxy/proxy"

// Repo stores the per-caller mediation state between requests. The caller
// session lifecycle (cookie/token issuance, expiry) belongs to the
// back-office auth layer; this store only holds the proxy's view of it.
type Repo interface {
	// Upsert creates or updates the session context for a caller session
	Upsert(sessionID string, sctx *proxy.SessionContext) error

	// Get retrieves the session context, or ErrSessionNotFound
	Get(sessionID string) (*proxy.SessionContext, error)

	// Delete destroys the session context (logout/expiry)
	Delete(sessionID string) error
}
