package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/utils"
	"gorm.io/gorm"
)

type planSeed struct {
	name     string
	totalROI int64
	days     int
	min, max int64
}

var defaultPlans = []planSeed{
	{"Starter", 20, 7, 100, 999},
	{"Silver", 35, 14, 1000, 4999},
	{"Gold", 60, 30, 5000, 19999},
	{"Platinum", 100, 45, 20000, 100000},
}

// SeedPlans inserts the default catalog. Rows are matched by name so restarts are no-ops.
func SeedPlans(db *gorm.DB) error {
	for _, s := range defaultPlans {
		total := decimal.NewFromInt(s.totalROI)
		plan := models.InvestmentPlan{
			Name:         s.name,
			TotalROI:     total,
			DailyROI:     total.Div(decimal.NewFromInt(int64(s.days))).Round(4),
			DurationDays: s.days,
			MinAmount:    decimal.NewFromInt(s.min),
			MaxAmount:    decimal.NewFromInt(s.max),
			IsActive:     true,
		}
		if err := db.Where(models.InvestmentPlan{Name: s.name}).FirstOrCreate(&plan).Error; err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", s.name, err)
		}
	}
	return nil
}

// EnsureAdminUser creates the bootstrap admin profile, or promotes it if it exists as a user.
func EnsureAdminUser(db *gorm.DB, cfg *Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var existing models.Profile
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		if existing.Role == models.RoleAdmin {
			return nil
		}
		return db.Model(&existing).Update("role", models.RoleAdmin).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	code, err := utils.GenerateReferralCode()
	if err != nil {
		return err
	}

	admin := models.Profile{
		Email:        cfg.AdminEmail,
		FullName:     "Administrator",
		PasswordHash: hash,
		ReferralCode: code,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	return db.Create(&admin).Error
}
