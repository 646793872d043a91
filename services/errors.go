// Package services holds the investment lifecycle: every multi-step balance
// mutation runs inside one database transaction and writes a ledger row.
package services

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrNotPending          = errors.New("request has already been reviewed")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAmountOutOfRange    = errors.New("amount outside plan limits")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPlanInactive        = errors.New("investment plan is not available")
	ErrUnsupportedCrypto   = errors.New("unsupported crypto type")
	ErrInvestmentInactive  = errors.New("investment is not active")
	ErrConversationClosed  = errors.New("conversation is closed")
	ErrEmptyMessage        = errors.New("subject and content are required")
	ErrSelfRevoke          = errors.New("cannot remove your own admin role")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrWeakPassword        = errors.New("password must be at least 8 characters")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidPlan         = errors.New("invalid plan definition")
	ErrPlanNameTaken       = errors.New("a plan with this name already exists")
)
