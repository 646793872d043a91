package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/models"
	"gorm.io/gorm"
)

type aggregate struct {
	Count int64
	Total decimal.Decimal
}

func sumOf(q *gorm.DB, column string) (aggregate, error) {
	var row aggregate
	err := q.Select(fmt.Sprintf("COUNT(*) AS count, COALESCE(SUM(%s), 0) AS total", column)).Scan(&row).Error
	return row, err
}

type Dashboard struct {
	Profile            *models.Profile      `json:"profile"`
	ActiveInvestments  int64                `json:"active_investments"`
	PortfolioValue     decimal.Decimal      `json:"portfolio_value"`
	PendingDeposits    int64                `json:"pending_deposits"`
	PendingWithdrawals int64                `json:"pending_withdrawals"`
	ReferralCount      int64                `json:"referral_count"`
	ReferralEarnings   decimal.Decimal      `json:"referral_earnings"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

type UserDetail struct {
	Profile     *models.Profile           `json:"profile"`
	Deposits    []models.Deposit          `json:"deposits"`
	Investments []models.ActiveInvestment `json:"investments"`
	Withdrawals []models.Withdrawal       `json:"withdrawals"`
}

type Stats struct {
	TotalUsers          int64           `json:"total_users"`
	PendingDeposits     int64           `json:"pending_deposits"`
	ConfirmedDeposits   int64           `json:"confirmed_deposits"`
	TotalDeposited      decimal.Decimal `json:"total_deposited"`
	PendingWithdrawals  int64           `json:"pending_withdrawals"`
	TotalWithdrawn      decimal.Decimal `json:"total_withdrawn"`
	ActiveInvestments   int64           `json:"active_investments"`
	ActivePrincipal     decimal.Decimal `json:"active_principal"`
	OutstandingBalances decimal.Decimal `json:"outstanding_balances"`
	OpenConversations   int64           `json:"open_conversations"`
}

// AccountService covers read models over a profile and the admin user-management operations.
type AccountService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewAccountService(db *gorm.DB, log *logrus.Logger) *AccountService {
	return &AccountService{db: db, log: log}
}

func (s *AccountService) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	profile, err := loadProfile(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	active, err := sumOf(db.Model(&models.ActiveInvestment{}).
		Where("user_id = ? AND status = ?", userID, models.InvestmentStatusActive), "current_value")
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		Profile:           profile,
		ActiveInvestments: active.Count,
		PortfolioValue:    active.Total,
	}
	if err := db.Model(&models.Deposit{}).
		Where("user_id = ? AND status = ?", userID, models.DepositStatusPending).
		Count(&dash.PendingDeposits).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status = ?", userID, models.WithdrawalStatusPending).
		Count(&dash.PendingWithdrawals).Error; err != nil {
		return nil, err
	}
	referrals, err := sumOf(db.Model(&models.Referral{}).Where("referrer_id = ?", userID), "bonus_amount")
	if err != nil {
		return nil, err
	}
	dash.ReferralCount, dash.ReferralEarnings = referrals.Count, referrals.Total

	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(10).
		Find(&dash.RecentTransactions).Error; err != nil {
		return nil, err
	}
	return dash, nil
}

// Transactions lists the caller's ledger, optionally filtered by type.
func (s *AccountService) Transactions(ctx context.Context, userID uuid.UUID, txType string, page Page) ([]models.Transaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []models.Transaction
	err := page.apply(q).Order("created_at DESC").Find(&txs).Error
	return txs, total, err
}

// ListUsers searches email and full name, case-insensitively.
func (s *AccountService) ListUsers(ctx context.Context, search string, page Page) ([]models.Profile, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Profile{})
	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.Profile
	err := page.apply(q).Order("created_at DESC").Find(&users).Error
	return users, total, err
}

func (s *AccountService) UserDetail(ctx context.Context, id uuid.UUID) (*UserDetail, error) {
	profile, err := loadProfile(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	detail := &UserDetail{Profile: profile}
	if err := db.Preload("Plan").Where("user_id = ?", id).Order("created_at DESC").Find(&detail.Deposits).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Plan").Where("user_id = ?", id).Order("created_at DESC").Find(&detail.Investments).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", id).Order("created_at DESC").Find(&detail.Withdrawals).Error; err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *AccountService) ListAdmins(ctx context.Context) ([]models.Profile, error) {
	var admins []models.Profile
	err := s.db.WithContext(ctx).Where("role = ?", models.RoleAdmin).Order("email ASC").Find(&admins).Error
	return admins, err
}

// SetAdmin grants or revokes the admin role on the profile with the given
// email. An admin cannot revoke their own role.
func (s *AccountService) SetAdmin(ctx context.Context, actor *models.Profile, email string, grant bool) (*models.Profile, error) {
	var target models.Profile
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&target).Error; err != nil {
		return nil, notFound(err)
	}
	if !grant && target.ID == actor.ID {
		return nil, ErrSelfRevoke
	}

	role := models.RoleUser
	if grant {
		role = models.RoleAdmin
	}
	if target.Role != role {
		if err := s.db.WithContext(ctx).Model(&target).Update("role", role).Error; err != nil {
			return nil, fmt.Errorf("failed to update role: %w", err)
		}
		target.Role = role
	}

	s.log.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"target_id": target.ID,
		"role":      role,
	}).Info("admin role changed")
	return &target, nil
}

func (s *AccountService) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats
	var errs []error

	count := func(model interface{}, dst *int64, query string, args ...interface{}) {
		q := db.Model(model)
		if query != "" {
			q = q.Where(query, args...)
		}
		errs = append(errs, q.Count(dst).Error)
	}
	sum := func(model interface{}, column string, query string, args ...interface{}) aggregate {
		row, err := sumOf(db.Model(model).Where(query, args...), column)
		errs = append(errs, err)
		return row
	}

	count(&models.Profile{}, &st.TotalUsers, "role = ?", models.RoleUser)
	count(&models.Deposit{}, &st.PendingDeposits, "status = ?", models.DepositStatusPending)
	count(&models.Withdrawal{}, &st.PendingWithdrawals, "status = ?", models.WithdrawalStatusPending)
	count(&models.Conversation{}, &st.OpenConversations, "status = ?", models.ConversationStatusOpen)

	confirmed := sum(&models.Deposit{}, "amount", "status = ?", models.DepositStatusConfirmed)
	st.ConfirmedDeposits, st.TotalDeposited = confirmed.Count, confirmed.Total

	st.TotalWithdrawn = sum(&models.Withdrawal{}, "amount", "status IN ?",
		[]string{models.WithdrawalStatusApproved, models.WithdrawalStatusCompleted}).Total

	active := sum(&models.ActiveInvestment{}, "principal_amount", "status = ?", models.InvestmentStatusActive)
	st.ActiveInvestments, st.ActivePrincipal = active.Count, active.Total

	st.OutstandingBalances = sum(&models.Profile{}, "account_balance", "1 = 1").Total

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &st, nil
}
