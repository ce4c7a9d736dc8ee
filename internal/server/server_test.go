package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	"github.com/smallbiznis/telcox/internal/accountcontext"
	authdomain "github.com/smallbiznis/telcox/internal/auth/domain"
	balancedomain "github.com/smallbiznis/telcox/internal/balance/domain"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/config"
	dashboarddomain "github.com/smallbiznis/telcox/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/telcox/internal/invoice/domain"
	"github.com/smallbiznis/telcox/internal/observability"
	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
	usagedomain "github.com/smallbiznis/telcox/internal/usage/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validToken    = "good-token"
	inactiveToken = "inactive-token"
	adminToken    = "admin-secret"
)

var (
	testAccountID = snowflake.ID(42)
	testNow       = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
)

type authStub struct {
	authdomain.Service
	registerErr error
	loginErr    error
	loggedOut   string
}

func (a *authStub) Register(_ context.Context, req authdomain.RegisterRequest) (accountdomain.Account, error) {
	if a.registerErr != nil {
		return accountdomain.Account{}, a.registerErr
	}
	return accountdomain.Account{ID: testAccountID, Name: req.Name, Email: req.Email, Status: accountdomain.StatusActive}, nil
}

func (a *authStub) Login(_ context.Context, req authdomain.LoginRequest) (authdomain.LoginResult, error) {
	if a.loginErr != nil {
		return authdomain.LoginResult{}, a.loginErr
	}
	return authdomain.LoginResult{
		AccessToken: validToken,
		TokenType:   authdomain.TokenTypeBearer,
		ExpiresIn:   1440,
		Account:     accountdomain.Account{ID: testAccountID, Email: req.Email},
	}, nil
}

func (a *authStub) Logout(_ context.Context, raw string) error {
	a.loggedOut = raw
	return nil
}

func (a *authStub) Authenticate(_ context.Context, raw string) (authdomain.Principal, error) {
	switch raw {
	case validToken:
		return authdomain.Principal{Account: accountdomain.Account{ID: testAccountID, Status: accountdomain.StatusActive}, TokenID: "jti"}, nil
	case inactiveToken:
		return authdomain.Principal{}, authdomain.ErrInactiveAccount
	default:
		return authdomain.Principal{}, authdomain.ErrInvalidToken
	}
}

type balanceStub struct {
	balancedomain.Service
	err error
}

func (b *balanceStub) Current(ctx context.Context) (balancedomain.Balance, error) {
	if b.err != nil {
		return balancedomain.Balance{}, b.err
	}
	accountID, _ := accountcontext.AccountIDFromContext(ctx)
	return balancedomain.Balance{AccountID: accountID}, nil
}

type dashboardStub struct {
	dashboarddomain.Service
	summaryErr error
	lastCharts dashboarddomain.ChartsRequest
}

func (d *dashboardStub) Summary(ctx context.Context) (dashboarddomain.Summary, error) {
	if d.summaryErr != nil {
		return dashboarddomain.Summary{}, d.summaryErr
	}
	accountID, _ := accountcontext.AccountIDFromContext(ctx)
	return dashboarddomain.Summary{
		Account:           accountdomain.Account{ID: accountID},
		CurrentMonthUsage: 150,
	}, nil
}

func (d *dashboardStub) Charts(_ context.Context, req dashboarddomain.ChartsRequest) (dashboarddomain.Charts, error) {
	d.lastCharts = req
	if req.Days != nil && *req.Days > 90 {
		return dashboarddomain.Charts{}, dashboarddomain.ErrInvalidWindow
	}
	return dashboarddomain.Charts{Days: 7, Months: 6}, nil
}

type usageStub struct {
	usagedomain.Service
}

func (usageStub) Ingest(_ context.Context, req usagedomain.IngestRequest) (usagedomain.UsageRecord, error) {
	if req.AccountID != "" && req.AccountID != testAccountID.String() {
		return usagedomain.UsageRecord{}, usagedomain.ErrForeignAccount
	}
	return usagedomain.UsageRecord{AccountID: testAccountID, Service: req.Service, Quantity: req.Quantity}, nil
}

type invoiceStub struct {
	invoicedomain.Service
}

func (invoiceStub) GetByID(_ context.Context, id string) (invoicedomain.Invoice, error) {
	if id == "1" {
		return invoicedomain.Invoice{ID: 1, Number: "INV-1"}, nil
	}
	return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
}

func (invoiceStub) Pay(_ context.Context, req invoicedomain.PayRequest) (invoicedomain.Invoice, error) {
	return invoicedomain.Invoice{}, invoicedomain.ErrNotPayable
}

func (invoiceStub) RenderPDF(_ context.Context, id string) ([]byte, invoicedomain.Invoice, error) {
	return []byte("%PDF-1.4"), invoicedomain.Invoice{Number: "INV-" + id}, nil
}

type planStub struct {
	plandomain.Service
}

func (planStub) ListActive(context.Context) ([]plandomain.Plan, error) {
	return nil, nil
}

func (planStub) Create(_ context.Context, req plandomain.CreatePlanRequest) (plandomain.Plan, error) {
	if req.Code == "basic" {
		return plandomain.Plan{}, plandomain.ErrDuplicate
	}
	return plandomain.Plan{Code: req.Code, Name: req.Name}, nil
}

type testServer struct {
	engine    *gin.Engine
	auth      *authStub
	balance   *balanceStub
	dashboard *dashboardStub
}

func newTestServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		engine:    NewEngine(observability.Config{}, nil),
		auth:      &authStub{},
		balance:   &balanceStub{},
		dashboard: &dashboardStub{},
	}
	NewServer(ServerParams{
		Gin:          ts.engine,
		Cfg:          cfg,
		Clock:        clock.NewFakeClock(testNow),
		AuthSvc:      ts.auth,
		AccountSvc:   nil,
		BalanceSvc:   ts.balance,
		DashboardSvc: ts.dashboard,
		UsageSvc:     usageStub{},
		InvoiceSvc:   invoiceStub{},
		PlanSvc:      planStub{},
	})
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, config.Config{AppName: "telcox", AppVersion: "1.0.0"})

	rec := ts.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.True(t, testNow.Equal(body.Timestamp))

	rec = ts.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"telcox","version":"1.0.0"}`, rec.Body.String())
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(http.MethodGet, "/dashboard/summary", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = ts.do(http.MethodGet, "/dashboard/summary", "bogus", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/dashboard/summary", inactiveToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboardSummary(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(http.MethodGet, "/dashboard/summary", validToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data dashboarddomain.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testAccountID, body.Data.Account.ID)
	assert.Equal(t, 150.0, body.Data.CurrentMonthUsage)
}

func TestDashboardSummaryStoreUnavailable(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.dashboard.summaryErr = fmt.Errorf("%w: usage: %w", dashboarddomain.ErrStoreUnavailable, context.DeadlineExceeded)

	rec := ts.do(http.MethodGet, "/dashboard/summary", validToken, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service_unavailable", decodeError(t, rec).Type)
}

func TestDashboardSummaryMissingBalance(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.dashboard.summaryErr = dashboarddomain.ErrBalanceNotFound

	rec := ts.do(http.MethodGet, "/dashboard/summary", validToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "balance not found", decodeError(t, rec).Message)
}

func TestDashboardChartsWindows(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(http.MethodGet, "/dashboard/charts?days=14&months=3", validToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ts.dashboard.lastCharts.Days)
	assert.Equal(t, 14, *ts.dashboard.lastCharts.Days)
	assert.Equal(t, 3, *ts.dashboard.lastCharts.Months)

	rec = ts.do(http.MethodGet, "/dashboard/charts", validToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, ts.dashboard.lastCharts.Days)

	rec = ts.do(http.MethodGet, "/dashboard/charts?days=abc", validToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "days", decodeError(t, rec).Errors[0].Field)

	rec = ts.do(http.MethodGet, "/dashboard/charts?days=365", validToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_window", decodeError(t, rec).Errors[0].Code)
}

func TestBalanceNotFound(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.balance.err = balancedomain.ErrNotFound

	rec := ts.do(http.MethodGet, "/balance", validToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "not_found", payload.Type)
	assert.Equal(t, "balance not found", payload.Message)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	req := map[string]string{"name": "Ana", "email": "ana@example.com", "password": "s3cretpass"}

	rec := ts.do(http.MethodPost, "/auth/register", "", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	ts.auth.registerErr = authdomain.ErrEmailTaken
	rec = ts.do(http.MethodPost, "/auth/register", "", req)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email already registered", decodeError(t, rec).Message)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(http.MethodPost, "/auth/register", "", map[string]string{"name": "Ana", "password": "s3cretpass"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "email", payload.Errors[0].Field)
	assert.Equal(t, "invalid_required", payload.Errors[0].Code)

	ts.auth.registerErr = authdomain.ErrWeakPassword
	rec = ts.do(http.MethodPost, "/auth/register", "", map[string]string{"name": "Ana", "email": "a@b.co", "password": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password", decodeError(t, rec).Errors[0].Field)
}

func TestLoginAndLogout(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "s3cretpass"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data authdomain.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bearer", body.Data.TokenType)
	assert.EqualValues(t, 1440, body.Data.ExpiresIn)

	ts.auth.loginErr = authdomain.ErrInvalidCredentials
	rec = ts.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/auth/logout", validToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, validToken, ts.auth.loggedOut)
}

func TestIngestUsageForeignAccount(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(http.MethodPost, "/usage", validToken, map[string]any{"account_id": "7", "service": "data", "quantity": 1.5})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/usage", validToken, map[string]any{"service": "data", "quantity": 1.5})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodPost, "/usage", validToken, map[string]any{"service": "data", "quantity": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity", decodeError(t, rec).Errors[0].Field)
}

func TestInvoiceRoutes(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(http.MethodGet, "/invoices/1", validToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/invoices/2", validToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "invoice not found", decodeError(t, rec).Message)

	rec = ts.do(http.MethodPost, "/invoices/1/pay", validToken, map[string]string{"payment_method": "card"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodGet, "/invoices/9/pdf", validToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "INV-9.pdf")
}

func TestPlanCatalogIsEmptyList(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(http.MethodGet, "/plans", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	rec := ts.do(http.MethodPost, "/admin/plans", "", map[string]any{"code": "max", "name": "Max"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	ts = newTestServer(t, config.Config{AdminAPIToken: adminToken})
	rec = ts.do(http.MethodPost, "/admin/plans", "", map[string]any{"code": "max", "name": "Max"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	doAdmin := func(body any) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/admin/plans", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(headerAdminToken, adminToken)
		out := httptest.NewRecorder()
		ts.engine.ServeHTTP(out, req)
		return out
	}

	rec = doAdmin(map[string]any{"code": "max", "name": "Max"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doAdmin(map[string]any{"code": "basic", "name": "Basic"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestMapErrorDefaultsToInternal(t *testing.T) {
	status, payload := mapError(fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", payload.Type)

	kind, code := classifyErrorForLog(fmt.Errorf("wrap: %w", invoicedomain.ErrNotPayable))
	assert.Equal(t, "conflict", kind)
	assert.Equal(t, "invoice_not_payable", code)

	kind, code = classifyErrorForLog(balancedomain.ErrNotFound)
	assert.Equal(t, "not_found", kind)
	assert.Equal(t, "balance_not_found", code)
}
