package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/logging"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/notify"
	"github.com/yourusername/coinvest-api/testutil"
	"gorm.io/gorm"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type MockMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *MockMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func (m *MockMailer) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.subject)
	}
	return out
}

type MockStellarClient struct {
	ValidateAccountFunc   func(accountID string) error
	VerifyTransactionFunc func(txHash string) (bool, error)
	BuildPayoutTxFunc     func(destination, amount string) (string, error)
}

func (m *MockStellarClient) ValidateAccount(accountID string) error {
	if m.ValidateAccountFunc != nil {
		return m.ValidateAccountFunc(accountID)
	}
	return nil
}

func (m *MockStellarClient) VerifyTransaction(txHash string) (bool, error) {
	if m.VerifyTransactionFunc != nil {
		return m.VerifyTransactionFunc(txHash)
	}
	return true, nil
}

func (m *MockStellarClient) BuildPayoutTx(destination, amount string) (string, error) {
	if m.BuildPayoutTxFunc != nil {
		return m.BuildPayoutTxFunc(destination, amount)
	}
	return "AAAA", nil
}

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	mailer      *MockMailer
	notifier    *notify.Notifier
	stellar     *MockStellarClient
	deposits    *DepositService
	investments *InvestmentService
	withdrawals *WithdrawalService
	auth        *AuthService
	accounts    *AccountService
	support     *SupportService
	referrals   *ReferralService
	plans       *PlanService
	admin       *models.Profile
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	log := logging.Discard()
	mailer := &MockMailer{}
	notifier := notify.New(mailer, log)
	stellar := &MockStellarClient{}

	env := &testEnv{
		db:          db,
		cfg:         cfg,
		mailer:      mailer,
		notifier:    notifier,
		stellar:     stellar,
		deposits:    NewDepositService(db, cfg, notifier, log),
		investments: NewInvestmentService(db, log),
		withdrawals: NewWithdrawalService(db, cfg, stellar, notifier, log),
		auth:        NewAuthService(db, cfg, notifier, log),
		accounts:    NewAccountService(db, log),
		support:     NewSupportService(db, log),
		referrals:   NewReferralService(db),
		plans:       NewPlanService(db),
		admin:       testutil.CreateProfile(t, db, models.Profile{Email: "admin@example.com", Role: models.RoleAdmin}),
	}
	t.Cleanup(notifier.Wait)
	return env
}

// confirmedInvestment submits and approves a deposit of amount on a fresh plan.
func (e *testEnv) confirmedInvestment(t *testing.T, user *models.Profile, amount int64) *ApprovalResult {
	t.Helper()
	plan := testutil.CreatePlan(t, e.db)
	deposit, err := e.deposits.Create(context.Background(), user, DepositInput{
		PlanID:        plan.ID,
		Amount:        decimal.NewFromInt(amount),
		CryptoType:    models.CryptoBTC,
		ProofImageURL: "https://storage.example.com/proof.png",
	})
	require.NoError(t, err)
	result, err := e.deposits.Approve(context.Background(), deposit.ID, e.admin.ID)
	require.NoError(t, err)
	return result
}

func (e *testEnv) setBalance(t *testing.T, user *models.Profile, amount int64) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.Profile{}).Where("id = ?", user.ID).
		Update("account_balance", decimal.NewFromInt(amount)).Error)
}

func dec(s string) string {
	return decimal.RequireFromString(s).String()
}
