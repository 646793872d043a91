package services

import (
	"context"
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
	"gorm.io/gorm"
)

type DepositInput struct {
	PlanID        uuid.UUID
	Amount        decimal.Decimal
	CryptoType    string
	TxHash        string
	ProofImageURL string
	ProofKey      string
}

// ApprovalResult is everything a confirmed deposit produced.
type ApprovalResult struct {
	Deposit       *models.Deposit          `json:"deposit"`
	Investment    *models.ActiveInvestment `json:"investment"`
	ReferralBonus *decimal.Decimal         `json:"referral_bonus,omitempty"`
}

type DepositService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier *notify.Notifier
	log      *logrus.Logger
}

func NewDepositService(db *gorm.DB, cfg *config.Config, notifier *notify.Notifier, log *logrus.Logger) *DepositService {
	return &DepositService{db: db, cfg: cfg, notifier: notifier, log: log}
}

// Validate checks plan, bounds and currency before anything is uploaded.
// It returns the plan and the platform wallet the user was told to pay.
func (s *DepositService) Validate(ctx context.Context, in DepositInput) (*models.InvestmentPlan, string, error) {
	var plan models.InvestmentPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", in.PlanID).Error; err != nil {
		return nil, "", notFound(err)
	}
	if !plan.IsActive {
		return nil, "", ErrPlanInactive
	}
	if !in.Amount.IsPositive() {
		return nil, "", ErrInvalidAmount
	}
	if !plan.Accepts(in.Amount) {
		return nil, "", ErrAmountOutOfRange
	}

	if !models.IsSupportedCrypto(in.CryptoType) {
		return nil, "", ErrUnsupportedCrypto
	}
	wallet, ok := s.cfg.WalletFor(in.CryptoType)
	if !ok {
		return nil, "", ErrUnsupportedCrypto
	}
	return &plan, wallet, nil
}

// Create records a pending deposit and emails every admin.
func (s *DepositService) Create(ctx context.Context, user *models.Profile, in DepositInput) (*models.Deposit, error) {
	plan, wallet, err := s.Validate(ctx, in)
	if err != nil {
		return nil, err
	}

	deposit := models.Deposit{
		UserID:        user.ID,
		PlanID:        plan.ID,
		Amount:        in.Amount.Round(2),
		CryptoType:    in.CryptoType,
		WalletAddress: wallet,
		ProofImageURL: in.ProofImageURL,
		ProofKey:      in.ProofKey,
		TxHash:        strings.TrimSpace(in.TxHash),
		Status:        models.DepositStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&deposit).Error; err != nil {
		return nil, fmt.Errorf("failed to create deposit: %w", err)
	}
	deposit.Plan = plan

	metrics.DepositEvents.WithLabelValues("submitted").Inc()
	s.log.WithFields(logrus.Fields{
		"deposit_id": deposit.ID,
		"user_id":    user.ID,
		"amount":     deposit.Amount.String(),
		"crypto":     deposit.CryptoType,
	}).Info("deposit submitted")

	admins, err := adminEmails(ctx, s.db)
	if err != nil {
		s.log.WithError(err).Warn("failed to load admin recipients")
	}
	s.notifier.DepositSubmitted(admins, user, &deposit)

	return &deposit, nil
}

func (s *DepositService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Deposit, error) {
	var deposits []models.Deposit
	err := s.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&deposits).Error
	return deposits, err
}

func (s *DepositService) GetForUser(ctx context.Context, userID, id uuid.UUID) (*models.Deposit, error) {
	var deposit models.Deposit
	err := s.db.WithContext(ctx).Preload("Plan").
		Where("id = ? AND user_id = ?", id, userID).
		First(&deposit).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &deposit, nil
}

func (s *DepositService) Get(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	var deposit models.Deposit
	if err := s.db.WithContext(ctx).Preload("Plan").First(&deposit, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &deposit, nil
}

// List returns deposits for review, newest first, optionally filtered by status.
func (s *DepositService) List(ctx context.Context, status string, page Page) ([]models.Deposit, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Deposit{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deposits []models.Deposit
	err := page.apply(q).Preload("Plan").Order("created_at DESC").Find(&deposits).Error
	return deposits, total, err
}

// Approve confirms a pending deposit. Confirmation, the investment row, the
// profile's total_invested, the ledger row and any referral bonus commit together
// or not at all. A deposit that is no longer pending yields ErrNotPending.
func (s *DepositService) Approve(ctx context.Context, id, adminID uuid.UUID) (*ApprovalResult, error) {
	var result ApprovalResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deposit models.Deposit
		if err := tx.First(&deposit, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if deposit.Status != models.DepositStatusPending {
			return ErrNotPending
		}

		var plan models.InvestmentPlan
		if err := tx.First(&plan, "id = ?", deposit.PlanID).Error; err != nil {
			return fmt.Errorf("failed to load plan: %w", notFound(err))
		}

		now := time.Now()
		res := tx.Model(&models.Deposit{}).
			Where("id = ? AND status = ?", deposit.ID, models.DepositStatusPending).
			Updates(map[string]interface{}{
				"status":      models.DepositStatusConfirmed,
				"reviewed_by": adminID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to confirm deposit: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrNotPending
		}

		investment := models.ActiveInvestment{
			UserID:          deposit.UserID,
			PlanID:          plan.ID,
			DepositID:       deposit.ID,
			PrincipalAmount: deposit.Amount,
			CurrentValue:    deposit.Amount,
			ExpectedReturn:  plan.ExpectedReturn(deposit.Amount),
			StartDate:       now,
			EndDate:         now.AddDate(0, 0, plan.DurationDays),
			Status:          models.InvestmentStatusActive,
		}
		if err := tx.Create(&investment).Error; err != nil {
			return fmt.Errorf("failed to create investment: %w", err)
		}

		res = tx.Model(&models.Profile{}).
			Where("id = ?", deposit.UserID).
			Update("total_invested", gorm.Expr("total_invested + ?", deposit.Amount))
		if res.Error != nil {
			return fmt.Errorf("failed to update profile: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrNotFound
		}

		if err := tx.Create(&models.Transaction{
			UserID:      deposit.UserID,
			Type:        models.TransactionTypeDeposit,
			Amount:      deposit.Amount,
			Description: fmt.Sprintf("Deposit confirmed into %s", plan.Name),
			ReferenceID: uuidPtr(deposit.ID),
		}).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		bonus, err := payReferralBonus(tx, s.cfg.ReferralBonusPercent, &deposit)
		if err != nil {
			return err
		}

		deposit.Status = models.DepositStatusConfirmed
		deposit.ReviewedBy = uuidPtr(adminID)
		deposit.ReviewedAt = &now
		deposit.Plan = &plan
		investment.Plan = &plan

		result = ApprovalResult{Deposit: &deposit, Investment: &investment, ReferralBonus: bonus}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DepositEvents.WithLabelValues("confirmed").Inc()
	if result.ReferralBonus != nil {
		metrics.ReferralBonusPaid(*result.ReferralBonus)
	}
	s.log.WithFields(logrus.Fields{
		"deposit_id":    result.Deposit.ID,
		"investment_id": result.Investment.ID,
		"admin_id":      adminID,
	}).Info("deposit confirmed")

	s.notifyUser(ctx, result.Deposit)
	return &result, nil
}

// Reject marks a pending deposit rejected with the admin's reason.
func (s *DepositService) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*models.Deposit, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Deposit{}).
		Where("id = ? AND status = ?", id, models.DepositStatusPending).
		Updates(map[string]interface{}{
			"status":      models.DepositStatusRejected,
			"admin_note":  strings.TrimSpace(reason),
			"reviewed_by": adminID,
			"reviewed_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to reject deposit: %w", res.Error)
	}

	deposit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected != 1 {
		return nil, ErrNotPending
	}

	metrics.DepositEvents.WithLabelValues("rejected").Inc()
	s.log.WithFields(logrus.Fields{"deposit_id": id, "admin_id": adminID}).Info("deposit rejected")

	s.notifyUser(ctx, deposit)
	return deposit, nil
}

func (s *DepositService) notifyUser(ctx context.Context, d *models.Deposit) {
	user, err := loadProfile(ctx, s.db, d.UserID)
	if err != nil {
		s.log.WithError(err).WithField("deposit_id", d.ID).Warn("failed to load depositor for notification")
		return
	}
	s.notifier.DepositReviewed(user, d)
}
