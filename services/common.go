package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yourusername/coinvest-api/models"
	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func adminEmails(ctx context.Context, db *gorm.DB) ([]string, error) {
	var emails []string
	err := db.WithContext(ctx).Model(&models.Profile{}).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Pluck("email", &emails).Error
	return emails, err
}

func loadProfile(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
