// Package seed bootstraps a starter plan catalog for local and self-hosted
// installs.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
	planrepo "github.com/smallbiznis/telcox/internal/plan/repository"
	"gorm.io/gorm"
)

type defaultPlan struct {
	code        string
	name        string
	description string
	price       string
	dataGB      float64
	minutes     int
	sms         int
	speedMbps   float64
}

var defaultPlans = []defaultPlan{
	{code: "basic", name: "Basic", description: "Light usage", price: "9.99", dataGB: 5, minutes: 100, sms: 100, speedMbps: 25},
	{code: "plus", name: "Plus", description: "Everyday usage", price: "24.99", dataGB: 25, minutes: 500, sms: 500, speedMbps: 100},
	{code: "unlimited", name: "Unlimited", description: "Heavy usage", price: "49.99", dataGB: 200, minutes: 5000, sms: 5000, speedMbps: 300},
}

// EnsureDefaultPlans inserts the starter plans whose codes are missing and
// returns how many were created.
func EnsureDefaultPlans(ctx context.Context, db *gorm.DB, node *snowflake.Node, now time.Time) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}
	if node == nil {
		return 0, errors.New("seed id generator is required")
	}

	repo := planrepo.Provide()
	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range defaultPlans {
			existing, err := repo.FindByCode(ctx, tx, def.code)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			plan := plandomain.Plan{
				ID:              node.Generate(),
				Code:            def.code,
				Name:            def.name,
				Description:     def.description,
				MonthlyPrice:    decimal.RequireFromString(def.price),
				DataIncludedGB:  def.dataGB,
				MinutesIncluded: def.minutes,
				SMSIncluded:     def.sms,
				MaxSpeedMbps:    def.speedMbps,
				Active:          true,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := repo.Insert(ctx, tx, &plan); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
