package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/coinvest-api/models"
	"gorm.io/gorm"
)

// payReferralBonus credits the referrer once, on the referred user's first
// confirmed deposit. It runs inside the caller's transaction.
func payReferralBonus(tx *gorm.DB, percent decimal.Decimal, deposit *models.Deposit) (*decimal.Decimal, error) {
	if !percent.IsPositive() {
		return nil, nil
	}

	var referral models.Referral
	err := tx.Where("referred_id = ? AND status = ?", deposit.UserID, models.ReferralStatusPending).
		First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load referral: %w", err)
	}

	bonus := deposit.Amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
	if !bonus.IsPositive() {
		return nil, nil
	}

	res := tx.Model(&models.Referral{}).
		Where("id = ? AND status = ?", referral.ID, models.ReferralStatusPending).
		Updates(map[string]interface{}{
			"status":       models.ReferralStatusPaid,
			"bonus_amount": bonus,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark referral paid: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return nil, nil
	}

	res = tx.Model(&models.Profile{}).
		Where("id = ?", referral.ReferrerID).
		Update("account_balance", gorm.Expr("account_balance + ?", bonus))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to credit referrer: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return nil, fmt.Errorf("referrer %s: %w", referral.ReferrerID, ErrNotFound)
	}

	if err := tx.Create(&models.Transaction{
		UserID:      referral.ReferrerID,
		Type:        models.TransactionTypeReferralBonus,
		Amount:      bonus,
		Description: "Referral bonus",
		ReferenceID: uuidPtr(deposit.ID),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to record bonus transaction: %w", err)
	}
	return &bonus, nil
}

type ReferredUser struct {
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	Status      string          `json:"status"`
	BonusAmount decimal.Decimal `json:"bonus_amount"`
	JoinedAt    time.Time       `json:"joined_at"`
}

type ReferralSummary struct {
	ReferralCode string          `json:"referral_code"`
	TotalEarned  decimal.Decimal `json:"total_earned"`
	Referrals    []ReferredUser  `json:"referrals"`
}

type ReferralService struct {
	db *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db}
}

func (s *ReferralService) Summary(ctx context.Context, userID uuid.UUID) (*ReferralSummary, error) {
	profile, err := loadProfile(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	var referred []ReferredUser
	err = s.db.WithContext(ctx).Table("referrals").
		Select("profiles.email, profiles.full_name, referrals.status, referrals.bonus_amount, referrals.created_at AS joined_at").
		Joins("JOIN profiles ON profiles.id = referrals.referred_id").
		Where("referrals.referrer_id = ?", userID).
		Order("referrals.created_at DESC").
		Scan(&referred).Error
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, r := range referred {
		if r.Status == models.ReferralStatusPaid {
			total = total.Add(r.BonusAmount)
		}
	}
	if referred == nil {
		referred = []ReferredUser{}
	}

	return &ReferralSummary{
		ReferralCode: profile.ReferralCode,
		TotalEarned:  total,
		Referrals:    referred,
	}, nil
}
