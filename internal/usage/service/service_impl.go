package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/internal/accountcontext"
	"github.com/smallbiznis/telcox/internal/clock"
	obsmetrics "github.com/smallbiznis/telcox/internal/observability/metrics"
	"github.com/smallbiznis/telcox/internal/usage/domain"
	"github.com/smallbiznis/telcox/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("usage.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Ingest(ctx context.Context, req domain.IngestRequest) (domain.UsageRecord, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.UsageRecord{}, domain.ErrInvalidAccount
	}
	if raw := strings.TrimSpace(req.AccountID); raw != "" {
		requested, err := snowflake.ParseString(raw)
		if err != nil || requested != accountID {
			return domain.UsageRecord{}, domain.ErrForeignAccount
		}
	}

	if err := validateIngest(req); err != nil {
		return domain.UsageRecord{}, err
	}

	class := req.Class
	if class == "" {
		class = domain.ClassNormal
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = req.Service.DefaultUnit()
	}

	now := s.clock.Now()
	recordedAt := now
	if req.RecordedAt != nil && !req.RecordedAt.IsZero() {
		recordedAt = *req.RecordedAt
	}

	totalCost := req.Quantity * req.UnitCost
	if req.TotalCost != nil {
		totalCost = *req.TotalCost
	}

	record := domain.UsageRecord{
		ID:         s.genID.Generate(),
		AccountID:  accountID,
		Service:    req.Service,
		Quantity:   req.Quantity,
		Unit:       unit,
		RecordedAt: recordedAt,
		Class:      class,
		UnitCost:   req.UnitCost,
		TotalCost:  totalCost,
		CreatedAt:  now,
	}
	if req.Metadata != nil {
		record.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		return domain.UsageRecord{}, err
	}

	s.obsMetrics.RecordUsageIngest(ctx, string(record.Service))
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (pagination.Page[domain.UsageRecord], error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return pagination.Page[domain.UsageRecord]{}, domain.ErrInvalidAccount
	}

	filter := domain.ListFilter{
		Service: domain.ServiceKind(strings.TrimSpace(req.Service)),
		From:    req.From,
		To:      req.To,
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return pagination.Page[domain.UsageRecord]{}, domain.ErrInvalidRange
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, accountID, filter, page)
	if err != nil {
		return pagination.Page[domain.UsageRecord]{}, err
	}

	records := make([]domain.UsageRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, *item)
	}

	return pagination.NewPage(records, total, page), nil
}

func validateIngest(req domain.IngestRequest) error {
	if !req.Service.Known() {
		return domain.ErrInvalidService
	}
	if req.Class != "" && !req.Class.Known() {
		return domain.ErrInvalidClass
	}
	if invalidAmount(req.Quantity) {
		return domain.ErrInvalidQuantity
	}
	if invalidAmount(req.UnitCost) {
		return domain.ErrInvalidCost
	}
	if req.TotalCost != nil && invalidAmount(*req.TotalCost) {
		return domain.ErrInvalidCost
	}
	return nil
}

func invalidAmount(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}
