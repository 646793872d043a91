package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeDeposit       = "deposit"
	TransactionTypeWithdrawal    = "withdrawal"
	TransactionTypeROI           = "roi"
	TransactionTypeReferralBonus = "referral_bonus"
)

// Transaction is a ledger entry. Every balance mutation writes one in the same DB transaction.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        string          `gorm:"size:20;not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	ReferenceID *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id,omitempty"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// TableName overrides the table name
func (Transaction) TableName() string {
	return "transactions"
}
