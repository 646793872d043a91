package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvestmentStatusActive    = "active"
	InvestmentStatusCompleted = "completed"
	InvestmentStatusCancelled = "cancelled"
)

type ActiveInvestment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID          uuid.UUID       `gorm:"type:uuid;not null" json:"plan_id"`
	Plan            *InvestmentPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	DepositID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"deposit_id"`
	PrincipalAmount decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"principal_amount"`
	CurrentValue    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"current_value"`
	ExpectedReturn  decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"expected_return"`
	StartDate       time.Time       `gorm:"not null" json:"start_date"`
	EndDate         time.Time       `gorm:"not null;index" json:"end_date"`
	Status          string          `gorm:"size:20;not null;index" json:"status"` // active, completed, cancelled
}

func (i *ActiveInvestment) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// TableName overrides the table name
func (ActiveInvestment) TableName() string {
	return "active_investments"
}
