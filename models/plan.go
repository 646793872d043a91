package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvestmentPlan struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Name         string          `gorm:"uniqueIndex;size:100;not null" json:"name"`
	DailyROI     decimal.Decimal `gorm:"column:daily_roi;type:numeric(8,4);not null" json:"daily_roi"` // percent
	TotalROI     decimal.Decimal `gorm:"column:total_roi;type:numeric(8,2);not null" json:"total_roi"` // percent
	DurationDays int             `gorm:"not null" json:"duration_days"`
	MinAmount    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"min_amount"`
	MaxAmount    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"max_amount"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
}

func (p *InvestmentPlan) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Accepts reports whether amount lies inside the plan's [min, max] bounds.
func (p *InvestmentPlan) Accepts(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount)
}

// ExpectedReturn is principal * (1 + total_roi/100), rounded to cents.
func (p *InvestmentPlan) ExpectedReturn(principal decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(p.TotalROI.Div(decimal.NewFromInt(100)))
	return principal.Mul(factor).Round(2)
}

// TableName overrides the table name
func (InvestmentPlan) TableName() string {
	return "investment_plans"
}
