package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/notify"
	"github.com/yourusername/coinvest-api/utils"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	referralCodeTries = 5
)

type SignUpInput struct {
	Email        string
	Password     string
	FullName     string
	ReferralCode string
}

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier *notify.Notifier
	log      *logrus.Logger
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notifier *notify.Notifier, log *logrus.Logger) *AuthService {
	return &AuthService{db: db, cfg: cfg, notifier: notifier, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a profile with a fresh referral code. A referral code, when
// given, must belong to an existing profile and links the two with a pending referral.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.Profile, error) {
	email := normalizeEmail(in.Email)
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	var referrer *models.Profile
	if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
		var r models.Profile
		if err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, err
		}
		referrer = &r
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	profile := models.Profile{
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		ReferralCode: code,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if referrer != nil {
		profile.ReferredBy = uuidPtr(referrer.ID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		if referrer == nil {
			return nil
		}
		return tx.Create(&models.Referral{
			ReferrerID: referrer.ID,
			ReferredID: profile.ID,
			Status:     models.ReferralStatusPending,
		}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent signup for the same email.
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", email).Count(&count).Error; err == nil && count > 0 {
			return nil, ErrEmailTaken
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": profile.ID, "referred": referrer != nil}).Info("profile created")
	return &profile, nil
}

func (s *AuthService) uniqueReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < referralCodeTries; i++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return "", err
		}
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("referral_code = ?", code).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", errors.New("failed to allocate a unique referral code")
}

// SignIn checks credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(profile.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !profile.IsActive {
		return nil, ErrAccountInactive
	}
	return &profile, nil
}

// RequestPasswordReset emails a short-lived reset token. Unknown addresses are
// silently ignored so the endpoint does not reveal who has an account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := middleware.GenerateToken(profile.ID, profile.Role, middleware.PurposeReset, s.resetSecret(&profile), s.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}
	s.notifier.PasswordReset(&profile, token, s.cfg.ResetTokenTTL)
	s.log.WithField("user_id", profile.ID).Info("password reset requested")
	return nil
}

// ResetPassword consumes a reset token. The signing key includes the current
// password hash, so a token stops working once it has been used.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	unverified, err := middleware.ParseUnverifiedUserID(token)
	if err != nil {
		return ErrInvalidResetToken
	}
	profile, err := loadProfile(ctx, s.db, unverified)
	if err != nil {
		return ErrInvalidResetToken
	}
	claims, err := middleware.ParseToken(token, s.resetSecret(profile), middleware.PurposeReset)
	if err != nil || claims.UserID != profile.ID.String() {
		return ErrInvalidResetToken
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(profile).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.WithField("user_id", profile.ID).Info("password reset")
	return nil
}

func (s *AuthService) resetSecret(p *models.Profile) string {
	return s.cfg.JWTSecret + ":" + p.PasswordHash
}

// Profile reloads the caller's row.
func (s *AuthService) Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return loadProfile(ctx, s.db, id)
}

func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, fullName string) (*models.Profile, error) {
	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("full_name", strings.TrimSpace(fullName))
	if res.Error != nil {
		return nil, res.Error
	}
	return loadProfile(ctx, s.db, id)
}
