// Package wsclient executes single HTTP calls against the external
// accounting web service and classifies their outcomes. It performs no
// retries; retry policy belongs to the orchestrating operation. Vendor status
// codes are normalized into the error taxonomy the moment a response is
// decoded and never propagate further.
package wsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	wserrors "github.com/erpbridge/go-ws-proxy/internal/errors"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Response is the vendor's uniform reply shape. Code "200" means success;
// everything else is mapped onto the taxonomy by FromVendor.
type Response[T any] struct {
	Code   string `json:"code"`
	Msg    string `json:"msg"`
	Result T      `json:"result"`
}

// Client issues vendor calls. A zero-configured client uses a 30s timeout.
type Client struct {
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption modifies a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a vendor client.
func New(options ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Call POSTs one envelope to an endpoint and decodes the typed result.
// Transport failures (dial, timeout, unreadable or undecodable body) surface
// as transport_error; a vendor-level rejection surfaces as the normalized
// taxonomy error carrying the vendor's message verbatim.
func Call[T any](ctx context.Context, c *Client, endpointURL string, env any) (T, error) {
	var zero T

	body, err := json.Marshal(env)
	if err != nil {
		return zero, wserrors.Newf(wserrors.CodeConfigurationError, "marshal request envelope: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return zero, wserrors.Newf(wserrors.CodeConfigurationError, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, wserrors.Newf(wserrors.CodeTransportError, "vendor call failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, wserrors.Newf(wserrors.CodeTransportError, "read vendor response: %v", err)
	}

	var vr Response[T]
	if err := json.Unmarshal(raw, &vr); err != nil {
		// Some vendor gateways reply with bare HTML on hard failures. Fall
		// back to the HTTP status when the body is not the standard shape.
		if resp.StatusCode != http.StatusOK {
			return zero, wserrors.FromVendor(strconv.Itoa(resp.StatusCode), http.StatusText(resp.StatusCode))
		}
		return zero, wserrors.Newf(wserrors.CodeTransportError, "decode vendor response: %v", err)
	}

	if err := wserrors.FromVendor(vr.Code, vr.Msg); err != nil {
		c.log.Debug().Str("vendor_code", vr.Code).Str("endpoint", endpointURL).Msg("vendor rejected call")
		return zero, err
	}
	return vr.Result, nil
}
