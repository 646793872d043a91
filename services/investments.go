package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/metrics"
	"github.com/yourusername/coinvest-api/models"
	"gorm.io/gorm"
)

// ROICredit carries exactly one of Amount or Percentage (of principal).
type ROICredit struct {
	Amount     *decimal.Decimal
	Percentage *decimal.Decimal
	Note       string
}

func (c ROICredit) resolve(principal decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case c.Amount != nil && c.Percentage != nil:
		return decimal.Zero, ErrInvalidAmount
	case c.Amount != nil:
		amount := c.Amount.Round(2)
		if !amount.IsPositive() {
			return decimal.Zero, ErrInvalidAmount
		}
		return amount, nil
	case c.Percentage != nil:
		if !c.Percentage.IsPositive() {
			return decimal.Zero, ErrInvalidAmount
		}
		amount := principal.Mul(*c.Percentage).Div(decimal.NewFromInt(100)).Round(2)
		if !amount.IsPositive() {
			return decimal.Zero, ErrInvalidAmount
		}
		return amount, nil
	default:
		return decimal.Zero, ErrInvalidAmount
	}
}

type InvestmentService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewInvestmentService(db *gorm.DB, log *logrus.Logger) *InvestmentService {
	return &InvestmentService{db: db, log: log}
}

func (s *InvestmentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ActiveInvestment, error) {
	var investments []models.ActiveInvestment
	err := s.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&investments).Error
	return investments, err
}

func (s *InvestmentService) List(ctx context.Context, status string, page Page) ([]models.ActiveInvestment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.ActiveInvestment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var investments []models.ActiveInvestment
	err := page.apply(q).Preload("Plan").Order("created_at DESC").Find(&investments).Error
	return investments, total, err
}

// CreditROI adds a return to an active investment and to the owner's balance
// in one transaction, with a matching ledger row.
func (s *InvestmentService) CreditROI(ctx context.Context, id, adminID uuid.UUID, credit ROICredit) (*models.ActiveInvestment, decimal.Decimal, error) {
	var investment models.ActiveInvestment
	var amount decimal.Decimal

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&investment, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if investment.Status != models.InvestmentStatusActive {
			return ErrInvestmentInactive
		}

		var err error
		if amount, err = credit.resolve(investment.PrincipalAmount); err != nil {
			return err
		}

		res := tx.Model(&models.ActiveInvestment{}).
			Where("id = ? AND status = ?", investment.ID, models.InvestmentStatusActive).
			Update("current_value", gorm.Expr("current_value + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to update investment: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrInvestmentInactive
		}

		res = tx.Model(&models.Profile{}).
			Where("id = ?", investment.UserID).
			Update("account_balance", gorm.Expr("account_balance + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to credit balance: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrNotFound
		}

		description := "ROI credit"
		if note := strings.TrimSpace(credit.Note); note != "" {
			description = note
		}
		if err := tx.Create(&models.Transaction{
			UserID:      investment.UserID,
			Type:        models.TransactionTypeROI,
			Amount:      amount,
			Description: description,
			ReferenceID: uuidPtr(investment.ID),
		}).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		return tx.Preload("Plan").First(&investment, "id = ?", investment.ID).Error
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	metrics.ROICredited(amount)
	s.log.WithFields(logrus.Fields{
		"investment_id": investment.ID,
		"admin_id":      adminID,
		"amount":        amount.String(),
	}).Info("roi credited")

	return &investment, amount, nil
}

// MarkMatured completes every active investment whose end date has passed.
// Balances are untouched; returns are credited separately.
func (s *InvestmentService) MarkMatured(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.ActiveInvestment{}).
		Where("status = ? AND end_date <= ?", models.InvestmentStatusActive, now).
		Update("status", models.InvestmentStatusCompleted)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark matured investments: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		metrics.InvestmentsMatured(res.RowsAffected)
		s.log.WithField("count", res.RowsAffected).Info("investments matured")
	}
	return res.RowsAffected, nil
}
