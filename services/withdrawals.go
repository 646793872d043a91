package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/metrics"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/notify"
	"github.com/yourusername/coinvest-api/utils"
	"gorm.io/gorm"
)

type WithdrawalInput struct {
	Amount        decimal.Decimal
	CryptoType    string
	WalletAddress string
}

type WithdrawalApproval struct {
	Withdrawal *models.Withdrawal `json:"withdrawal"`
	// PayoutXDR is an unsigned Stellar payment envelope for XLM payouts.
	PayoutXDR string `json:"payout_xdr,omitempty"`
}

type WithdrawalService struct {
	db       *gorm.DB
	cfg      *config.Config
	stellar  utils.StellarClientInterface
	notifier *notify.Notifier
	log      *logrus.Logger
}

// NewWithdrawalService builds the service. stellar may be nil.
func NewWithdrawalService(db *gorm.DB, cfg *config.Config, stellar utils.StellarClientInterface, notifier *notify.Notifier, log *logrus.Logger) *WithdrawalService {
	return &WithdrawalService{db: db, cfg: cfg, stellar: stellar, notifier: notifier, log: log}
}

// Request creates a pending withdrawal. Nothing is written when the amount
// exceeds the current balance.
func (s *WithdrawalService) Request(ctx context.Context, user *models.Profile, in WithdrawalInput) (*models.Withdrawal, error) {
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(s.cfg.MinWithdrawal) {
		return nil, ErrBelowMinimum
	}
	if !models.IsSupportedCrypto(in.CryptoType) {
		return nil, ErrUnsupportedCrypto
	}
	address := strings.TrimSpace(in.WalletAddress)
	if err := utils.ValidateWalletAddress(in.CryptoType, address); err != nil {
		return nil, err
	}
	if in.CryptoType == models.CryptoXLM && s.stellar != nil {
		if err := s.stellar.ValidateAccount(address); err != nil {
			return nil, err
		}
	}

	profile, err := loadProfile(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(profile.AccountBalance) {
		return nil, ErrInsufficientBalance
	}

	withdrawal := models.Withdrawal{
		UserID:        profile.ID,
		Amount:        amount,
		CryptoType:    in.CryptoType,
		WalletAddress: address,
		Status:        models.WithdrawalStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&withdrawal).Error; err != nil {
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	metrics.WithdrawalEvents.WithLabelValues("requested").Inc()
	s.log.WithFields(logrus.Fields{
		"withdrawal_id": withdrawal.ID,
		"user_id":       profile.ID,
		"amount":        amount.String(),
	}).Info("withdrawal requested")

	admins, err := adminEmails(ctx, s.db)
	if err != nil {
		s.log.WithError(err).Warn("failed to load admin recipients")
	}
	s.notifier.WithdrawalRequested(admins, profile, &withdrawal)

	return &withdrawal, nil
}

func (s *WithdrawalService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&withdrawals).Error
	return withdrawals, err
}

func (s *WithdrawalService) List(ctx context.Context, status string, page Page) ([]models.Withdrawal, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Withdrawal{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var withdrawals []models.Withdrawal
	err := page.apply(q).Order("created_at DESC").Find(&withdrawals).Error
	return withdrawals, total, err
}

func (s *WithdrawalService) Get(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// Approve debits the balance and marks the request approved. The debit is
// guarded on account_balance >= amount; if the balance dropped since the
// request the whole approval rolls back with ErrInsufficientBalance.
func (s *WithdrawalService) Approve(ctx context.Context, id, adminID uuid.UUID, note string) (*WithdrawalApproval, error) {
	var withdrawal models.Withdrawal

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&withdrawal, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if withdrawal.Status != models.WithdrawalStatusPending {
			return ErrNotPending
		}

		now := time.Now()
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawal.ID, models.WithdrawalStatusPending).
			Updates(map[string]interface{}{
				"status":      models.WithdrawalStatusApproved,
				"admin_note":  strings.TrimSpace(note),
				"reviewed_by": adminID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to approve withdrawal: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrNotPending
		}

		res = tx.Model(&models.Profile{}).
			Where("id = ? AND account_balance >= ?", withdrawal.UserID, withdrawal.Amount).
			Updates(map[string]interface{}{
				"account_balance": gorm.Expr("account_balance - ?", withdrawal.Amount),
				"total_withdrawn": gorm.Expr("total_withdrawn + ?", withdrawal.Amount),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to debit balance: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrInsufficientBalance
		}

		if err := tx.Create(&models.Transaction{
			UserID:      withdrawal.UserID,
			Type:        models.TransactionTypeWithdrawal,
			Amount:      withdrawal.Amount,
			Description: fmt.Sprintf("Withdrawal to %s address", withdrawal.CryptoType),
			ReferenceID: uuidPtr(withdrawal.ID),
		}).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		withdrawal.Status = models.WithdrawalStatusApproved
		withdrawal.AdminNote = strings.TrimSpace(note)
		withdrawal.ReviewedBy = uuidPtr(adminID)
		withdrawal.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.WithdrawalEvents.WithLabelValues("approved").Inc()
	s.log.WithFields(logrus.Fields{"withdrawal_id": withdrawal.ID, "admin_id": adminID}).Info("withdrawal approved")

	result := &WithdrawalApproval{Withdrawal: &withdrawal}
	if withdrawal.CryptoType == models.CryptoXLM && s.stellar != nil {
		xdr, err := s.stellar.BuildPayoutTx(withdrawal.WalletAddress, withdrawal.Amount.StringFixed(7))
		switch {
		case err == nil:
			result.PayoutXDR = xdr
		case errors.Is(err, utils.ErrPayoutAccountNotConfigured):
		default:
			s.log.WithError(err).WithField("withdrawal_id", withdrawal.ID).Warn("failed to build stellar payout")
		}
	}

	s.notifyUser(ctx, &withdrawal)
	return result, nil
}

func (s *WithdrawalService) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*models.Withdrawal, error) {
	res := s.db.WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, models.WithdrawalStatusPending).
		Updates(map[string]interface{}{
			"status":      models.WithdrawalStatusRejected,
			"admin_note":  strings.TrimSpace(reason),
			"reviewed_by": adminID,
			"reviewed_at": time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to reject withdrawal: %w", res.Error)
	}

	withdrawal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected != 1 {
		return nil, ErrNotPending
	}

	metrics.WithdrawalEvents.WithLabelValues("rejected").Inc()
	s.log.WithFields(logrus.Fields{"withdrawal_id": id, "admin_id": adminID}).Info("withdrawal rejected")

	s.notifyUser(ctx, withdrawal)
	return withdrawal, nil
}

// Complete closes an approved payout, recording its on-chain hash when known.
func (s *WithdrawalService) Complete(ctx context.Context, id, adminID uuid.UUID, txHash string) (*models.Withdrawal, error) {
	updates := map[string]interface{}{"status": models.WithdrawalStatusCompleted}
	if txHash = strings.TrimSpace(txHash); txHash != "" {
		updates["tx_hash"] = txHash
	}

	res := s.db.WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, models.WithdrawalStatusApproved).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to complete withdrawal: %w", res.Error)
	}

	withdrawal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected != 1 {
		return nil, ErrInvalidState
	}

	metrics.WithdrawalEvents.WithLabelValues("completed").Inc()
	s.log.WithFields(logrus.Fields{"withdrawal_id": id, "admin_id": adminID}).Info("withdrawal completed")

	s.notifyUser(ctx, withdrawal)
	return withdrawal, nil
}

func (s *WithdrawalService) notifyUser(ctx context.Context, w *models.Withdrawal) {
	user, err := loadProfile(ctx, s.db, w.UserID)
	if err != nil {
		s.log.WithError(err).WithField("withdrawal_id", w.ID).Warn("failed to load user for notification")
		return
	}
	s.notifier.WithdrawalReviewed(user, w)
}
