package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusRejected  = "rejected"
	WithdrawalStatusCompleted = "completed"
)

type Withdrawal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	CryptoType    string          `gorm:"size:10;not null" json:"crypto_type"`
	WalletAddress string          `gorm:"size:128;not null" json:"wallet_address"`
	Status        string          `gorm:"size:20;not null;index" json:"status"` // pending, approved, rejected, completed
	AdminNote     string          `gorm:"type:text" json:"admin_note,omitempty"`
	TxHash        string          `gorm:"size:128" json:"tx_hash,omitempty"`
	ReviewedBy    *uuid.UUID      `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
}

func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	assignID(&w.ID)
	return nil
}

// TableName overrides the table name
func (Withdrawal) TableName() string {
	return "withdrawals"
}
