package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ReferralStatusPending = "pending"
	ReferralStatusPaid    = "paid"
)

type Referral struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ReferrerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"referrer_id"`
	ReferredID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"referred_id"`
	BonusAmount decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"bonus_amount"`
	Status      string          `gorm:"size:20;not null" json:"status"` // pending, paid
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// TableName overrides the table name
func (Referral) TableName() string {
	return "referrals"
}
