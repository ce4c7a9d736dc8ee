package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountrepo "github.com/smallbiznis/telcox/internal/account/repository"
	"github.com/smallbiznis/telcox/internal/auth/domain"
	"github.com/smallbiznis/telcox/internal/auth/token"
	balancerepo "github.com/smallbiznis/telcox/internal/balance/repository"
	"github.com/smallbiznis/telcox/internal/clock"
	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
	"github.com/smallbiznis/telcox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)

type planStub struct {
	plandomain.Service
	plans map[string]plandomain.Plan
}

func (p planStub) ResolveActiveCode(_ context.Context, code string) (plandomain.Plan, error) {
	plan, ok := p.plans[code]
	if !ok {
		return plandomain.Plan{}, plandomain.ErrNotFound
	}
	if !plan.Active {
		return plandomain.Plan{}, plandomain.ErrInactive
	}
	return plan, nil
}

type harness struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newHarness(t *testing.T) harness {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.MustNode(t)
	clk := clock.NewFakeClock(fixedNow)

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Tokens:      token.NewManager("test-secret", "telcox", 1440*time.Minute, clk),
		Blacklist:   token.NewBlacklist(nil),
		AccountRepo: accountrepo.Provide(),
		BalanceRepo: balancerepo.Provide(),
		PlanSvc: planStub{plans: map[string]plandomain.Plan{
			"basic":  {ID: 77, Code: "basic", Active: true},
			"legacy": {ID: 78, Code: "legacy", Active: false},
		}},
	})
	return harness{svc: svc, db: db, clock: clk, node: node}
}

func register(t *testing.T, h harness, email string) {
	t.Helper()
	_, err := h.svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "Ana Lima",
		Email:    email,
		Password: "correct-password",
	})
	require.NoError(t, err)
}

func TestRegisterCreatesAccountAndZeroBalance(t *testing.T) {
	h := newHarness(t)

	account, err := h.svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "  Ana Lima ",
		Email:    "Ana@Example.com",
		Password: "correct-password",
		PlanCode: "basic",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", account.Name)
	assert.Equal(t, "ana@example.com", account.Email)
	require.NotNil(t, account.PlanID)
	assert.Equal(t, snowflake.ID(77), *account.PlanID)
	assert.NotEqual(t, "correct-password", account.PasswordHash)

	balance, err := balancerepo.Provide().FindByAccountID(context.Background(), h.db, account.ID)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.True(t, balance.Current.IsZero())
	assert.True(t, balance.Available.IsZero())
	assert.Equal(t, "USD", balance.Currency)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	register(t, h, "ana@example.com")

	_, err := h.svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "Other",
		Email:    "ANA@example.com",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	cases := []struct {
		name string
		req  domain.RegisterRequest
		want error
	}{
		{"blank name", domain.RegisterRequest{Name: " ", Email: "a@b.co", Password: "12345678"}, domain.ErrInvalidName},
		{"bad email", domain.RegisterRequest{Name: "A", Email: "nope", Password: "12345678"}, domain.ErrInvalidEmail},
		{"short password", domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "1234567"}, domain.ErrWeakPassword},
		{"inactive plan", domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "12345678", PlanCode: "legacy"}, plandomain.ErrInactive},
		{"unknown plan", domain.RegisterRequest{Name: "A", Email: "a@b.co", Password: "12345678", PlanCode: "gold"}, plandomain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.Register(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoginReturnsBearerToken(t *testing.T) {
	h := newHarness(t)
	register(t, h, "ana@example.com")

	result, err := h.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ana@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "bearer", result.TokenType)
	assert.Equal(t, int64(1440), result.ExpiresIn)
	assert.NotEmpty(t, result.AccessToken)

	principal, err := h.svc.Authenticate(context.Background(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.Account.ID, principal.Account.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	register(t, h, "ana@example.com")

	_, err := h.svc.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = h.svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "correct-password"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestInactiveAccountCannotAuthenticate(t *testing.T) {
	h := newHarness(t)
	register(t, h, "ana@example.com")

	result, err := h.svc.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "correct-password"})
	require.NoError(t, err)

	require.NoError(t, h.db.Exec(`UPDATE accounts SET status = 'suspended' WHERE id = ?`, result.Account.ID).Error)

	_, err = h.svc.Authenticate(context.Background(), result.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInactiveAccount)

	_, err = h.svc.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "correct-password"})
	assert.ErrorIs(t, err, domain.ErrInactiveAccount)
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	register(t, h, "ana@example.com")

	result, err := h.svc.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "correct-password"})
	require.NoError(t, err)

	require.NoError(t, h.svc.Logout(context.Background(), result.AccessToken))

	_, err = h.svc.Authenticate(context.Background(), result.AccessToken)
	assert.ErrorIs(t, err, domain.ErrRevokedToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	h := newHarness(t)
	register(t, h, "ana@example.com")

	result, err := h.svc.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "correct-password"})
	require.NoError(t, err)

	h.clock.Advance(1441 * time.Minute)
	_, err = h.svc.Authenticate(context.Background(), result.AccessToken)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}
