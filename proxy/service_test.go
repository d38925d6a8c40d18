package proxy_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/erpbridge/go-ws-proxy/companies"
	companyrepofakes "github.com/erpbridge/go-ws-proxy/companies/repofakes"
	"github.com/erpbridge/go-ws-proxy/creditbus"
	"github.com/erpbridge/go-ws-proxy/envelope"
	wserrors "github.com/erpbridge/go-ws-proxy/internal/errors"
	"github.com/erpbridge/go-ws-proxy/proxy"
	"github.com/erpbridge/go-ws-proxy/wsclient"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	testUserID     = "user-1"
	testCompanyID  = 7
	testSourceURL  = "https://ws.example.com/api/v3"
	testToken      = "vendor-session-1"
	testCreditLeft = 42
)

// fakeGateway is a scripted VendorGateway that records every call.
type fakeGateway struct {
	mu sync.Mutex

	loginToken string
	loginErr   error
	loginCalls int
	loginURL   string

	periods    []wsclient.Period
	periodsErr error

	creditCount int
	creditErr   error
	creditCalls int

	listResult json.RawMessage
	listErr    error
	listURL    string
	listEnv    envelope.List
}

func (g *fakeGateway) Login(ctx context.Context, endpointURL string, env envelope.Login) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loginCalls++
	g.loginURL = endpointURL
	return g.loginToken, g.loginErr
}

func (g *fakeGateway) Periods(ctx context.Context, endpointURL string, env envelope.GetPeriods) ([]wsclient.Period, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.periods, g.periodsErr
}

func (g *fakeGateway) CreditCount(ctx context.Context, endpointURL string, env envelope.GetCreditCount) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creditCalls++
	return g.creditCount, g.creditErr
}

func (g *fakeGateway) List(ctx context.Context, endpointURL string, env envelope.List) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listURL = endpointURL
	g.listEnv = env
	return g.listResult, g.listErr
}

// fakeAccess allows a fixed user/company pairing.
type fakeAccess struct {
	userID    string
	companies map[int]bool
}

func (a *fakeAccess) UserMayAccessCompany(userID string, companyID int) bool {
	return userID == a.userID && a.companies[companyID]
}

type testFixture struct {
	companyRepo *companyrepofakes.FakeCompanyRepo
	gateway     *fakeGateway
	bus         *creditbus.Bus
	service     *proxy.Service
	now         time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	cr := companyrepofakes.NewFakeCompanyRepo()
	cr.Upsert(&companies.Credentials{
		ID:          testCompanyID,
		SourceURL:   testSourceURL,
		Username:    "ws-user",
		APIKey:      "key",
		APISecret:   "secret",
		CompanyCode: "17",
	})
	cr.Upsert(&companies.Credentials{ID: 9, SourceURL: testSourceURL, Username: "ws-user", CompanyCode: "19"})

	gw := &fakeGateway{loginToken: testToken, creditCount: testCreditLeft}

	bus, err := creditbus.New(func(ctx context.Context, companyID int) (int, error) {
		return testCreditLeft, nil
	})
	require.NoError(t, err)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	service, err := proxy.NewService(
		proxy.Repos{Companies: cr},
		&fakeAccess{userID: testUserID, companies: map[int]bool{testCompanyID: true, 9: true}},
		gw,
		bus,
		proxy.WithNowTime(func() time.Time { return now }),
	)
	require.NoError(t, err)

	return &testFixture{companyRepo: cr, gateway: gw, bus: bus, service: service, now: now}
}

// selectedContext returns a context already pointing at the test company.
func (f *testFixture) selectedContext(t *testing.T) *proxy.SessionContext {
	t.Helper()
	sctx := &proxy.SessionContext{CallerSessionID: "caller-1"}
	require.NoError(t, f.service.SelectCompany(sctx, testUserID, testCompanyID))
	return sctx
}

func TestNewService(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("requires all dependencies", func(t *testing.T) {
		_, err := proxy.NewService(proxy.Repos{}, nil, nil, nil)
		require.Error(t, err)

		_, err = proxy.NewService(proxy.Repos{Companies: f.companyRepo}, nil, f.gateway, f.bus)
		require.Error(t, err)
	})
}

func TestSelectCompany(t *testing.T) {
	t.Run("resets the selected period to the vendor default", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := f.selectedContext(t)

		f.service.SelectPeriod(sctx, 3)
		require.Equal(t, 3, sctx.SelectedPeriodCode)

		require.NoError(t, f.service.SelectCompany(sctx, testUserID, 9))
		require.Equal(t, 9, sctx.SelectedCompanyID)
		require.Equal(t, 0, sctx.SelectedPeriodCode)
	})

	t.Run("denies companies the user may not access", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := &proxy.SessionContext{}

		err := f.service.SelectCompany(sctx, testUserID, 404)
		require.Error(t, err)
		require.True(t, errors.Is(err, proxy.CompanyAccessDeniedErr))
		require.False(t, sctx.CompanySelected())
	})
}

func TestSelectPeriod(t *testing.T) {
	t.Run("sets the period without an existence check", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := f.selectedContext(t)

		f.service.SelectPeriod(sctx, 9999)
		require.Equal(t, 9999, sctx.SelectedPeriodCode)
	})
}

func TestEnsureAuthenticated(t *testing.T) {
	ctx := context.Background()

	t.Run("fails without a company and makes no network call", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := &proxy.SessionContext{}

		err := f.service.EnsureAuthenticated(ctx, sctx)
		require.Error(t, err)
		require.Equal(t, wserrors.CodeNoCompanySelected, wserrors.CodeOf(err))
		require.Equal(t, 0, f.gateway.loginCalls)
	})

	t.Run("stores the vendor token on success", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := f.selectedContext(t)

		require.NoError(t, f.service.EnsureAuthenticated(ctx, sctx))
		require.Equal(t, testToken, sctx.VendorSessionToken)
		require.Equal(t, f.now, sctx.LastAuthenticatedAt)
		require.Equal(t, testSourceURL+"/sis", f.gateway.loginURL)
	})

	t.Run("vendor rejection leaves the previous token untouched", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := f.selectedContext(t)
		sctx.VendorSessionToken = "previous-token"

		f.gateway.loginErr = wserrors.FromVendor("401", "bad creds")

		err := f.service.EnsureAuthenticated(ctx, sctx)
		require.Error(t, err)
		require.Equal(t, wserrors.CodeUpstreamAuthFailed, wserrors.CodeOf(err))
		require.Contains(t, err.Error(), "bad creds")
		require.Equal(t, "previous-token", sctx.VendorSessionToken)
	})

	t.Run("transport failures keep their transport classification", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := f.selectedContext(t)
		f.gateway.loginErr = wserrors.New(wserrors.CodeTransportError, "dial tcp: timeout")

		err := f.service.EnsureAuthenticated(ctx, sctx)
		require.Equal(t, wserrors.CodeTransportError, wserrors.CodeOf(err))
	})

	t.Run("missing credentials are a configuration error", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := &proxy.SessionContext{SelectedCompanyID: 123}

		err := f.service.EnsureAuthenticated(ctx, sctx)
		require.Equal(t, wserrors.CodeConfigurationError, wserrors.CodeOf(err))
		require.Equal(t, 0, f.gateway.loginCalls)
	})
}

func TestPeriods(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticates then lists periods", func(t *testing.T) {
		f := setupTestFixture(t)
		f.gateway.periods = []wsclient.Period{{Code: 1, Description: "2025"}, {Code: 2, Description: "2026"}}
		sctx := f.selectedContext(t)

		periods, err := f.service.Periods(ctx, sctx)
		require.NoError(t, err)
		require.Len(t, periods, 2)
		require.Equal(t, 1, f.gateway.loginCalls)
	})

	t.Run("publishes the refreshed credit count", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := f.selectedContext(t)

		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stream, err := f.bus.Subscribe(streamCtx, testCompanyID)
		require.NoError(t, err)
		<-stream // drain the snapshot

		_, err = f.service.Periods(ctx, sctx)
		require.NoError(t, err)

		select {
		case event := <-stream:
			require.Equal(t, testCreditLeft, event.CreditCount)
			require.Equal(t, "creditCount:7", event.Key)
		case <-time.After(time.Second):
			t.Fatal("expected a credit refresh event")
		}
	})

	t.Run("credit refresh failure does not fail the primary call", func(t *testing.T) {
		f := setupTestFixture(t)
		f.gateway.periods = []wsclient.Period{{Code: 1}}
		f.gateway.creditErr = wserrors.New(wserrors.CodeUpstreamServerError, "credit service down")
		sctx := f.selectedContext(t)

		periods, err := f.service.Periods(ctx, sctx)
		require.NoError(t, err)
		require.Len(t, periods, 1)
	})
}

func TestCreditCount(t *testing.T) {
	ctx := context.Background()

	t.Run("returns and publishes the balance", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := f.selectedContext(t)

		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stream, err := f.bus.Subscribe(streamCtx, testCompanyID)
		require.NoError(t, err)
		<-stream // drain the snapshot

		count, err := f.service.CreditCount(ctx, sctx)
		require.NoError(t, err)
		require.Equal(t, testCreditLeft, count)

		select {
		case event := <-stream:
			require.Equal(t, testCreditLeft, event.CreditCount)
		case <-time.After(time.Second):
			t.Fatal("expected a published credit event")
		}
	})

	t.Run("vendor failure surfaces normalized", func(t *testing.T) {
		f := setupTestFixture(t)
		f.gateway.creditErr = wserrors.FromVendor("500", "internal")
		sctx := f.selectedContext(t)

		_, err := f.service.CreditCount(ctx, sctx)
		require.Equal(t, wserrors.CodeUpstreamServerError, wserrors.CodeOf(err))
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("scopes the query to the selected company and period", func(t *testing.T) {
		f := setupTestFixture(t)
		f.gateway.listResult = json.RawMessage(`[{"id":1}]`)
		sctx := f.selectedContext(t)
		f.service.SelectPeriod(sctx, 3)

		rows, err := f.service.List(ctx, sctx, "scf_siparis_listele", []string{"id", "tarih"}, []envelope.Filter{
			{Field: "durum", Operator: envelope.OpEqual, Value: "acik"},
		})
		require.NoError(t, err)
		require.JSONEq(t, `[{"id":1}]`, string(rows))

		require.Equal(t, testSourceURL+"/scf", f.gateway.listURL)
		require.Equal(t, "17", f.gateway.listEnv.CompanyCode)
		require.Equal(t, 3, f.gateway.listEnv.PeriodCode)
		require.Equal(t, testToken, f.gateway.listEnv.SessionID)
	})

	t.Run("empty projection is rejected before the vendor call", func(t *testing.T) {
		f := setupTestFixture(t)
		sctx := f.selectedContext(t)

		_, err := f.service.List(ctx, sctx, "scf_siparis_listele", nil, nil)
		require.Equal(t, wserrors.CodeConfigurationError, wserrors.CodeOf(err))
		require.Empty(t, f.gateway.listURL)
	})

	t.Run("refreshes credit after a successful list", func(t *testing.T) {
		f := setupTestFixture(t)
		f.gateway.listResult = json.RawMessage(`[]`)
		sctx := f.selectedContext(t)

		_, err := f.service.List(ctx, sctx, "scf_stok_listele", []string{"id"}, nil)
		require.NoError(t, err)
		// One login + one refresh credit query.
		require.Equal(t, 1, f.gateway.creditCalls)
	})
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	sctx := f.selectedContext(t)
	require.NoError(t, f.service.EnsureAuthenticated(context.Background(), sctx))

	f.service.Logout(sctx)
	require.Empty(t, sctx.VendorSessionToken)
	require.False(t, sctx.CompanySelected())
	require.Equal(t, 0, sctx.SelectedPeriodCode)
}
