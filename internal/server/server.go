package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/telcox/internal/account"
	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	"github.com/smallbiznis/telcox/internal/auth"
	authdomain "github.com/smallbiznis/telcox/internal/auth/domain"
	"github.com/smallbiznis/telcox/internal/balance"
	balancedomain "github.com/smallbiznis/telcox/internal/balance/domain"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/config"
	"github.com/smallbiznis/telcox/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/telcox/internal/dashboard/domain"
	"github.com/smallbiznis/telcox/internal/invoice"
	invoicedomain "github.com/smallbiznis/telcox/internal/invoice/domain"
	"github.com/smallbiznis/telcox/internal/observability"
	obsmiddleware "github.com/smallbiznis/telcox/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/telcox/internal/observability/metrics"
	obstracing "github.com/smallbiznis/telcox/internal/observability/tracing"
	"github.com/smallbiznis/telcox/internal/plan"
	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
	"github.com/smallbiznis/telcox/internal/providers"
	"github.com/smallbiznis/telcox/internal/ratelimit"
	"github.com/smallbiznis/telcox/internal/usage"
	usagedomain "github.com/smallbiznis/telcox/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	providers.Module,
	plan.Module,
	account.Module,
	balance.Module,
	usage.Module,
	invoice.Module,
	dashboard.Module,
	auth.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	registerValidatorTagNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log = log.Named("http.server")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	clock        clock.Clock
	authSvc      authdomain.Service
	accountSvc   accountdomain.Service
	balanceSvc   balancedomain.Service
	dashboardSvc dashboarddomain.Service
	usageSvc     usagedomain.Service
	invoiceSvc   invoicedomain.Service
	planSvc      plandomain.Service
	loginLimiter *ratelimit.LoginLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Clock        clock.Clock
	AuthSvc      authdomain.Service
	AccountSvc   accountdomain.Service
	BalanceSvc   balancedomain.Service
	DashboardSvc dashboarddomain.Service
	UsageSvc     usagedomain.Service
	InvoiceSvc   invoicedomain.Service
	PlanSvc      plandomain.Service
	LoginLimiter *ratelimit.LoginLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		clock:        p.Clock,
		authSvc:      p.AuthSvc,
		accountSvc:   p.AccountSvc,
		balanceSvc:   p.BalanceSvc,
		dashboardSvc: p.DashboardSvc,
		usageSvc:     p.UsageSvc,
		invoiceSvc:   p.InvoiceSvc,
		planSvc:      p.PlanSvc,
		loginLimiter: p.LoginLimiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerPublicRoutes()
	svc.registerAuthRoutes()
	svc.registerAccountRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	s.engine.GET("/", s.Banner)
	s.engine.GET("/health", s.Health)

	s.engine.GET("/plans", s.ListPlans)
	s.engine.GET("/plans/:id", s.GetPlanByID)
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.LoginRateLimit(), s.Login)
	auth.POST("/logout", s.AuthRequired(), s.Logout)
}

func (s *Server) registerAccountRoutes() {
	r := s.engine.Group("/", s.AuthRequired())

	r.GET("/account", s.GetAccount)
	r.PATCH("/account", s.UpdateAccount)

	// -------- Dashboard --------
	r.GET("/dashboard/summary", s.GetDashboardSummary)
	r.GET("/dashboard/charts", s.GetDashboardCharts)

	// -------- Usage --------
	r.GET("/usage", s.ListUsage)
	r.POST("/usage", s.IngestUsage)

	// -------- Invoices --------
	r.GET("/invoices", s.ListInvoices)
	r.POST("/invoices", s.CreateInvoice)
	r.GET("/invoices/:id", s.GetInvoiceByID)
	r.POST("/invoices/:id/pay", s.PayInvoice)
	r.GET("/invoices/:id/pdf", s.DownloadInvoicePDF)

	r.GET("/balance", s.GetBalance)
}

// registerAdminRoutes is a no-op without an admin token.
func (s *Server) registerAdminRoutes() {
	if s.cfg.AdminAPIToken == "" {
		return
	}
	admin := s.engine.Group("/admin", s.AdminRequired())

	admin.POST("/plans", s.CreatePlan)
	admin.PATCH("/plans/:id", s.UpdatePlan)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

func (s *Server) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    s.cfg.AppName,
		"version": s.cfg.AppVersion,
	})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.clock.Now().UTC(),
	})
}
