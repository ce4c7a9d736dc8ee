package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	"github.com/smallbiznis/telcox/internal/auth/domain"
	"github.com/smallbiznis/telcox/internal/auth/password"
	"github.com/smallbiznis/telcox/internal/auth/token"
	balancedomain "github.com/smallbiznis/telcox/internal/balance/domain"
	"github.com/smallbiznis/telcox/internal/clock"
	obsmetrics "github.com/smallbiznis/telcox/internal/observability/metrics"
	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
	"github.com/smallbiznis/telcox/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxNameLength  = 100
	maxPhoneLength = 20
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Tokens      *token.Manager
	Blacklist   token.Blacklist
	AccountRepo accountdomain.Repository
	BalanceRepo balancedomain.Repository
	PlanSvc     plandomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	tokens      *token.Manager
	blacklist   token.Blacklist
	accountRepo accountdomain.Repository
	balanceRepo balancedomain.Repository
	planSvc     plandomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("auth.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		tokens:      p.Tokens,
		blacklist:   p.Blacklist,
		accountRepo: p.AccountRepo,
		balanceRepo: p.BalanceRepo,
		planSvc:     p.PlanSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

// Register creates the account together with its zero opening balance.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (accountdomain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxNameLength {
		return accountdomain.Account{}, domain.ErrInvalidName
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return accountdomain.Account{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < password.MinLength {
		return accountdomain.Account{}, domain.ErrWeakPassword
	}
	phone := strings.TrimSpace(req.Phone)
	if len(phone) > maxPhoneLength {
		return accountdomain.Account{}, accountdomain.ErrInvalidPhone
	}

	var planID *snowflake.ID
	if code := strings.TrimSpace(req.PlanCode); code != "" {
		plan, err := s.planSvc.ResolveActiveCode(ctx, code)
		if err != nil {
			return accountdomain.Account{}, err
		}
		planID = &plan.ID
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return accountdomain.Account{}, err
	}

	now := s.clock.Now()
	account := accountdomain.Account{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hashed,
		PlanID:       planID,
		Status:       accountdomain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	balance := balancedomain.NewZero(s.genID.Generate(), account.ID, decimal.Zero, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.accountRepo.FindByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}
		if err := s.accountRepo.Insert(ctx, tx, &account); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrEmailTaken
			}
			return err
		}
		return s.balanceRepo.Insert(ctx, tx, &balance)
	})
	if err != nil {
		return accountdomain.Account{}, err
	}

	s.log.Info("account registered", zap.String("account_id", account.ID.String()))
	return account, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil || req.Password == "" {
		s.recordLogin(ctx, "invalid")
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	account, err := s.accountRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if account == nil || !password.Verify(req.Password, account.PasswordHash) {
		s.recordLogin(ctx, "invalid")
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}
	if !account.IsActive() {
		s.recordLogin(ctx, "inactive")
		return domain.LoginResult{}, domain.ErrInactiveAccount
	}

	issued, err := s.tokens.Issue(account.ID)
	if err != nil {
		return domain.LoginResult{}, err
	}

	s.recordLogin(ctx, "success")
	return domain.LoginResult{
		AccessToken: issued.Token,
		TokenType:   domain.TokenTypeBearer,
		ExpiresIn:   int64(s.tokens.TTL().Minutes()),
		Account:     *account,
	}, nil
}

// Logout revokes the token id for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Time.Sub(s.clock.Now())
	if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	s.log.Info("token revoked", zap.String("account_id", claims.Subject))
	return nil
}

// Authenticate resolves a bearer token to an active account.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (domain.Principal, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return domain.Principal{}, err
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Principal{}, err
	}
	if revoked {
		return domain.Principal{}, domain.ErrRevokedToken
	}

	accountID, err := claims.AccountID()
	if err != nil {
		return domain.Principal{}, err
	}
	account, err := s.accountRepo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return domain.Principal{}, err
	}
	if account == nil {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	if !account.IsActive() {
		return domain.Principal{}, domain.ErrInactiveAccount
	}
	return domain.Principal{Account: *account, TokenID: claims.ID}, nil
}

func (s *Service) recordLogin(ctx context.Context, result string) {
	if s.obsMetrics == nil {
		return
	}
	s.obsMetrics.RecordLogin(ctx, result)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if addr.Name != "" {
		return "", errors.New("display names are not accepted")
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}
