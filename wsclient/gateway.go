package wsclient

import (
	"context"
	"encoding/json"

	"github.com/erpbridge/go-ws-proxy/envelope"
)

// Period is one accounting period available under a company.
type Period struct {
	Code        int    `json:"donem_kodu"`
	Description string `json:"aciklama"`
}

// Gateway is the typed call surface used by the proxy service. Each method is
// a single vendor round-trip; the session token travels inside the envelope.
type Gateway struct {
	client *Client
}

// NewGateway wraps a Client with typed vendor operations.
func NewGateway(c *Client) *Gateway {
	return &Gateway{client: c}
}

// Login authenticates and returns the vendor session token.
func (g *Gateway) Login(ctx context.Context, endpointURL string, env envelope.Login) (string, error) {
	return Call[string](ctx, g.client, endpointURL, env)
}

// Periods lists the accounting periods under the envelope's company.
func (g *Gateway) Periods(ctx context.Context, endpointURL string, env envelope.GetPeriods) ([]Period, error) {
	return Call[[]Period](ctx, g.client, endpointURL, env)
}

// CreditCount queries the remaining credit balance.
func (g *Gateway) CreditCount(ctx context.Context, endpointURL string, env envelope.GetCreditCount) (int, error) {
	return Call[int](ctx, g.client, endpointURL, env)
}

// List executes a generic vendor list query and returns the undecoded result
// rows; row shape varies per operation so decoding is left to the caller.
func (g *Gateway) List(ctx context.Context, endpointURL string, env envelope.List) (json.RawMessage, error) {
	return Call[json.RawMessage](ctx, g.client, endpointURL, env)
}
