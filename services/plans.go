package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/coinvest-api/models"
	"gorm.io/gorm"
)

type PlanInput struct {
	Name         string
	DailyROI     decimal.Decimal
	TotalROI     decimal.Decimal
	DurationDays int
	MinAmount    decimal.Decimal
	MaxAmount    decimal.Decimal
	IsActive     bool
}

func (in PlanInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidPlan)
	case in.DurationDays <= 0:
		return fmt.Errorf("%w: duration_days must be positive", ErrInvalidPlan)
	case in.TotalROI.IsNegative() || in.DailyROI.IsNegative():
		return fmt.Errorf("%w: roi cannot be negative", ErrInvalidPlan)
	case !in.MinAmount.IsPositive():
		return fmt.Errorf("%w: min_amount must be positive", ErrInvalidPlan)
	case in.MaxAmount.LessThan(in.MinAmount):
		return fmt.Errorf("%w: max_amount must be at least min_amount", ErrInvalidPlan)
	}
	return nil
}

type PlanService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// ListActive returns the public catalog ordered by minimum amount.
func (s *PlanService) ListActive(ctx context.Context) ([]models.InvestmentPlan, error) {
	var plans []models.InvestmentPlan
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("min_amount ASC").Find(&plans).Error
	return plans, err
}

func (s *PlanService) ListAll(ctx context.Context) ([]models.InvestmentPlan, error) {
	var plans []models.InvestmentPlan
	err := s.db.WithContext(ctx).Order("min_amount ASC").Find(&plans).Error
	return plans, err
}

func (s *PlanService) Get(ctx context.Context, id uuid.UUID) (*models.InvestmentPlan, error) {
	var plan models.InvestmentPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

func (s *PlanService) Create(ctx context.Context, in PlanInput) (*models.InvestmentPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plan := models.InvestmentPlan{
		Name:         strings.TrimSpace(in.Name),
		DailyROI:     in.DailyROI,
		TotalROI:     in.TotalROI,
		DurationDays: in.DurationDays,
		MinAmount:    in.MinAmount,
		MaxAmount:    in.MaxAmount,
		IsActive:     in.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPlanNameTaken
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return &plan, nil
}

// Update replaces a plan's terms. Existing investments keep the dates and
// expected return computed when they were confirmed.
func (s *PlanService) Update(ctx context.Context, id uuid.UUID, in PlanInput) (*models.InvestmentPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(plan).Updates(map[string]interface{}{
		"name":          strings.TrimSpace(in.Name),
		"daily_roi":     in.DailyROI,
		"total_roi":     in.TotalROI,
		"duration_days": in.DurationDays,
		"min_amount":    in.MinAmount,
		"max_amount":    in.MaxAmount,
		"is_active":     in.IsActive,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrPlanNameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return s.Get(ctx, id)
}
