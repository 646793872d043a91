package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DepositStatusPending   = "pending"
	DepositStatusConfirmed = "confirmed"
	DepositStatusRejected  = "rejected"
)

type Deposit struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID        uuid.UUID       `gorm:"type:uuid;not null" json:"plan_id"`
	Plan          *InvestmentPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	CryptoType    string          `gorm:"size:10;not null" json:"crypto_type"`
	WalletAddress string          `gorm:"size:128;not null" json:"wallet_address"`
	ProofImageURL string          `gorm:"size:2000" json:"proof_image_url"`
	ProofKey      string          `gorm:"size:300" json:"-"`
	TxHash        string          `gorm:"size:128" json:"tx_hash,omitempty"`
	Status        string          `gorm:"size:20;not null;index" json:"status"` // pending, confirmed, rejected
	AdminNote     string          `gorm:"type:text" json:"admin_note,omitempty"`
	ReviewedBy    *uuid.UUID      `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
}

func (d *Deposit) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// TableName overrides the table name
func (Deposit) TableName() string {
	return "deposits"
}
