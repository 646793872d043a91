// Package testutil holds fixtures shared by package tests: an in-memory
// database, a config, and profile/plan factories.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every model migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func Config() *config.Config {
	return &config.Config{
		CORSOrigins:          []string{"*"},
		JWTSecret:            "test-secret",
		JWTRefreshSecret:     "test-refresh-secret",
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenTTL:      24 * time.Hour,
		ResetTokenTTL:        30 * time.Minute,
		ReferralBonusPercent: decimal.NewFromInt(5),
		MinWithdrawal:        decimal.NewFromInt(10),
		Wallets: map[string]string{
			models.CryptoBTC:  "1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
			models.CryptoUSDT: "0x52908400098527886E0F7030069857D2E4169EE7",
		},
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

// CreateProfile inserts a profile. Email and role default when empty; the password is always "password123".
func CreateProfile(t testing.TB, db *gorm.DB, p models.Profile) *models.Profile {
	t.Helper()
	if p.Email == "" {
		p.Email = uuid.NewString()[:8] + "@example.com"
	}
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	if p.ReferralCode == "" {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			t.Fatalf("referral code: %v", err)
		}
		p.ReferralCode = code
	}
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	p.PasswordHash = hash
	p.IsActive = true
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return &p
}

// CreatePlan inserts a plan accepting 100..1000 with 15% total ROI over 30 days.
func CreatePlan(t testing.TB, db *gorm.DB) *models.InvestmentPlan {
	t.Helper()
	plan := models.InvestmentPlan{
		Name:         "Plan " + uuid.NewString()[:8],
		DailyROI:     decimal.RequireFromString("0.5"),
		TotalROI:     decimal.NewFromInt(15),
		DurationDays: 30,
		MinAmount:    decimal.NewFromInt(100),
		MaxAmount:    decimal.NewFromInt(1000),
		IsActive:     true,
	}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return &plan
}

// Reload re-reads a row by primary key.
func Reload[T any](t testing.TB, db *gorm.DB, id uuid.UUID) *T {
	t.Helper()
	var out T
	if err := db.First(&out, "id = ?", id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	return &out
}

func Count(t testing.TB, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
