package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/services"
)

type AuthHandler struct {
	auth *services.AuthService
	cfg  *config.Config
	log  *logrus.Logger
}

func NewAuthHandler(auth *services.AuthService, cfg *config.Config, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg, log: log}
}

type SignUpRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	FullName     string `json:"full_name" binding:"required,max=255"`
	ReferralCode string `json:"referral_code" binding:"omitempty,max=16"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshToken request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,max=255"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.auth.SignUp(c.Request.Context(), services.SignUpInput{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondWithTokens(c, http.StatusCreated, profile)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, profile)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := middleware.ParseToken(req.RefreshToken, h.cfg.JWTRefreshSecret, middleware.PurposeRefresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token", "code": "InvalidToken"})
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token", "code": "InvalidToken"})
		return
	}

	// Fetch user from DB to ensure they still exist and are active
	profile, err := h.auth.Profile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !profile.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "User account is inactive"})
		return
	}

	h.respondWithTokens(c, http.StatusOK, profile)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the address is registered, a reset link has been sent."})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), profile.ID, req.FullName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, profile *models.Profile) {
	accessToken, err := middleware.GenerateToken(profile.ID, profile.Role, middleware.PurposeAccess, h.cfg.JWTSecret, h.cfg.AccessTokenTTL)
	if err != nil {
		respondError(c, h.log, fmt.Errorf("failed to generate access token: %w", err))
		return
	}

	refreshToken, err := middleware.GenerateToken(profile.ID, profile.Role, middleware.PurposeRefresh, h.cfg.JWTRefreshSecret, h.cfg.RefreshTokenTTL)
	if err != nil {
		respondError(c, h.log, fmt.Errorf("failed to generate refresh token: %w", err))
		return
	}

	c.JSON(status, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"profile":       profile,
	})
}
