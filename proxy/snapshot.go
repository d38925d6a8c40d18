package proxy

import (
	"context"

	"github.com/erpbridge/go-ws-proxy/companies"
	"github.com/erpbridge/go-ws-proxy/creditbus"
	"github.com/erpbridge/go-ws-proxy/envelope"
	"github.com/erpbridge/go-ws-proxy/wsclient"
	"github.com/pkg/errors"
)

// CreditSnapshot builds the bus's snapshot function from the company registry
// and the vendor gateway alone, so the bus can be constructed before the
// Service. Each snapshot uses a short-lived vendor session of its own; it is
// independent of any caller's session state.
func CreditSnapshot(repo companies.Repo, gateway VendorGateway) creditbus.SnapshotFunc {
	return func(ctx context.Context, companyID int) (int, error) {
		creds, err := repo.Get(companyID)
		if err != nil {
			return 0, errors.Wrapf(err, "[CreditSnapshot] company %d", companyID)
		}

		endpoint := wsclient.ResolveEndpoint(creds.SourceURL, wsclient.SuffixSIS)
		login := envelope.NewLogin(creds.Username, creds.APISecret, map[string]any{"apikey": creds.APIKey}, false)
		token, err := gateway.Login(ctx, endpoint, login)
		if err != nil {
			return 0, errors.Wrap(err, "[CreditSnapshot] vendor login")
		}

		count, err := gateway.CreditCount(ctx, endpoint, envelope.NewGetCreditCount(token, nil))
		if err != nil {
			return 0, errors.Wrap(err, "[CreditSnapshot] credit count")
		}
		return count, nil
	}
}
