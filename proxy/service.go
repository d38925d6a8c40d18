// Package proxy mediates caller sessions against the external accounting web
// service: it guarantees every outbound vendor call carries a freshly scoped
// session token, shapes vendor requests, and propagates credit-balance
// changes to the event bus.
package proxy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/erpbridge/go-ws-proxy/companies"
	"github.com/erpbridge/go-ws-proxy/creditbus"
	"github.com/erpbridge/go-ws-proxy/envelope"
	wserrors "github.com/erpbridge/go-ws-proxy/internal/errors"
	"github.com/erpbridge/go-ws-proxy/wsclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AccessChecker decides whether a user may work in a company. The real
// implementation belongs to the back-office authorization layer.
type AccessChecker interface {
	UserMayAccessCompany(userID string, companyID int) bool
}

// VendorGateway is the typed vendor call surface, implemented by
// wsclient.Gateway and faked in tests.
type VendorGateway interface {
	Login(ctx context.Context, endpointURL string, env envelope.Login) (string, error)
	Periods(ctx context.Context, endpointURL string, env envelope.GetPeriods) ([]wsclient.Period, error)
	CreditCount(ctx context.Context, endpointURL string, env envelope.GetCreditCount) (int, error)
	List(ctx context.Context, endpointURL string, env envelope.List) (json.RawMessage, error)
}

// Repos holds all repository dependencies for the Service.
type Repos struct {
	Companies companies.Repo
}

// Service is the external session and credit proxy.
type Service struct {
	repos   Repos
	access  AccessChecker
	gateway VendorGateway
	bus     *creditbus.Bus
	log     zerolog.Logger
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService initializes the proxy service with required dependencies.
func NewService(
	repos Repos,
	access AccessChecker,
	gateway VendorGateway,
	bus *creditbus.Bus,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Companies == nil {
		return nil, errors.New("[NewService] Companies repo is required")
	}
	if access == nil {
		return nil, errors.New("[NewService] access checker is required")
	}
	if gateway == nil {
		return nil, errors.New("[NewService] vendor gateway is required")
	}
	if bus == nil {
		return nil, errors.New("[NewService] credit bus is required")
	}

	service := &Service{
		repos:   repos,
		access:  access,
		gateway: gateway,
		bus:     bus,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// SelectCompany validates access and points the session at a company. The
// selected period always resets to 0 (the vendor default): a period selected
// under the previous company is not guaranteed to exist under the new one.
func (s *Service) SelectCompany(sctx *SessionContext, userID string, companyID int) error {
	if !s.access.UserMayAccessCompany(userID, companyID) {
		return errors.Wrapf(CompanyAccessDeniedErr, "[SelectCompany] user %s company %d", userID, companyID)
	}
	sctx.SelectedCompanyID = companyID
	sctx.SelectedPeriodCode = 0
	return nil
}

// SelectPeriod sets the period unconditionally; the vendor validates
// existence on the next call.
func (s *Service) SelectPeriod(sctx *SessionContext, periodCode int) {
	sctx.SelectedPeriodCode = periodCode
}

// EnsureAuthenticated guarantees the session holds a vendor token obtained
// since the current company selection. Without a selected company it fails
// before any network traffic. On vendor rejection the previous token is left
// untouched: a stale token is discarded only once a new attempt succeeds,
// never eagerly cleared.
func (s *Service) EnsureAuthenticated(ctx context.Context, sctx *SessionContext) error {
	if !sctx.CompanySelected() {
		return wserrors.New(wserrors.CodeNoCompanySelected, "select a company before calling the web service")
	}

	creds, err := s.credentials(sctx)
	if err != nil {
		return err
	}

	env := envelope.NewLogin(creds.Username, creds.APISecret, map[string]any{"apikey": creds.APIKey}, true)
	token, err := s.gateway.Login(ctx, wsclient.ResolveEndpoint(creds.SourceURL, wsclient.SuffixSIS), env)
	if err != nil {
		if wserrors.IsCode(err, wserrors.CodeTransportError) {
			return errors.Wrap(err, "[EnsureAuthenticated] vendor login")
		}
		return wserrors.Newf(wserrors.CodeUpstreamAuthFailed, "vendor login rejected: %s", vendorMessage(err))
	}

	sctx.VendorSessionToken = token
	sctx.LastAuthenticatedAt = s.nowTime()
	return nil
}

// Periods lists the accounting periods available under the selected company.
func (s *Service) Periods(ctx context.Context, sctx *SessionContext) ([]wsclient.Period, error) {
	if err := s.EnsureAuthenticated(ctx, sctx); err != nil {
		return nil, err
	}
	creds, err := s.credentials(sctx)
	if err != nil {
		return nil, err
	}

	env := envelope.NewGetPeriods(sctx.VendorSessionToken, creds.CompanyCode, nil)
	periods, err := s.gateway.Periods(ctx, wsclient.ResolveEndpoint(creds.SourceURL, wsclient.SuffixSIS), env)
	if err != nil {
		return nil, errors.Wrap(err, "[Periods] vendor call")
	}

	s.refreshCredit(ctx, sctx, creds)
	return periods, nil
}

// CreditCount queries the remaining credit balance and publishes it to the
// bus so live subscribers stay current.
func (s *Service) CreditCount(ctx context.Context, sctx *SessionContext) (int, error) {
	if err := s.EnsureAuthenticated(ctx, sctx); err != nil {
		return 0, err
	}
	creds, err := s.credentials(sctx)
	if err != nil {
		return 0, err
	}

	env := envelope.NewGetCreditCount(sctx.VendorSessionToken, nil)
	count, err := s.gateway.CreditCount(ctx, wsclient.ResolveEndpoint(creds.SourceURL, wsclient.SuffixSIS), env)
	if err != nil {
		return 0, errors.Wrap(err, "[CreditCount] vendor call")
	}

	s.bus.Publish(sctx.SelectedCompanyID, count)
	return count, nil
}

// List executes a generic vendor list query (orders, stocks, invoices, ...)
// scoped to the selected company and period, returning the raw result rows.
func (s *Service) List(ctx context.Context, sctx *SessionContext, op string, projection []string, filters []envelope.Filter) (json.RawMessage, error) {
	if err := s.EnsureAuthenticated(ctx, sctx); err != nil {
		return nil, err
	}
	creds, err := s.credentials(sctx)
	if err != nil {
		return nil, err
	}

	env, err := envelope.NewList(op, sctx.VendorSessionToken, creds.CompanyCode, sctx.SelectedPeriodCode, projection, filters)
	if err != nil {
		return nil, err
	}

	rows, err := s.gateway.List(ctx, wsclient.ResolveEndpoint(creds.SourceURL, wsclient.SuffixSCF), env)
	if err != nil {
		return nil, errors.Wrapf(err, "[List] vendor call %q", op)
	}

	s.refreshCredit(ctx, sctx, creds)
	return rows, nil
}

// Logout drops the vendor token and the company/period selection. The caller
// session record itself is destroyed by the session store, not here.
func (s *Service) Logout(sctx *SessionContext) {
	sctx.Reset()
}

// refreshCredit re-queries the credit balance after a substantive vendor call
// and publishes the new value. A failure here is logged and never fails the
// primary operation; the primary result has already been obtained.
func (s *Service) refreshCredit(ctx context.Context, sctx *SessionContext, creds *companies.Credentials) {
	env := envelope.NewGetCreditCount(sctx.VendorSessionToken, nil)
	count, err := s.gateway.CreditCount(ctx, wsclient.ResolveEndpoint(creds.SourceURL, wsclient.SuffixSIS), env)
	if err != nil {
		s.log.Warn().Err(err).Int("company_id", sctx.SelectedCompanyID).Msg("credit refresh after vendor call failed")
		return
	}
	s.bus.Publish(sctx.SelectedCompanyID, count)
}

func (s *Service) credentials(sctx *SessionContext) (*companies.Credentials, error) {
	creds, err := s.repos.Companies.Get(sctx.SelectedCompanyID)
	if err != nil {
		return nil, wserrors.Newf(wserrors.CodeConfigurationError, "company %d has no web service credentials", sctx.SelectedCompanyID)
	}
	return creds, nil
}

// vendorMessage pulls the human-readable detail out of a taxonomy error.
func vendorMessage(err error) string {
	var e *wserrors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
