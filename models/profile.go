package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Profile is the single row held per identity: credentials, balances and referral lineage.
type Profile struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
	Email          string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName       string          `gorm:"size:255" json:"full_name"`
	PasswordHash   string          `gorm:"size:255;not null" json:"-"`
	AccountBalance decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"account_balance"`
	TotalInvested  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_invested"`
	TotalWithdrawn decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_withdrawn"`
	ReferralCode   string          `gorm:"uniqueIndex;size:16;not null" json:"referral_code"`
	ReferredBy     *uuid.UUID      `gorm:"type:uuid;index" json:"referred_by,omitempty"`
	Role           string          `gorm:"size:20;not null" json:"role"` // user, admin
	IsActive       bool            `gorm:"not null" json:"is_active"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// TableName overrides the table name
func (Profile) TableName() string {
	return "profiles"
}
