package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/services"
	"github.com/yourusername/coinvest-api/utils"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrPlanInactive, http.StatusNotFound},
	{services.ErrNotPending, http.StatusConflict},
	{services.ErrInvalidState, http.StatusConflict},
	{services.ErrInvestmentInactive, http.StatusConflict},
	{services.ErrConversationClosed, http.StatusConflict},
	{services.ErrEmailTaken, http.StatusConflict},
	{services.ErrPlanNameTaken, http.StatusConflict},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrAccountInactive, http.StatusForbidden},
	{services.ErrInvalidAmount, http.StatusBadRequest},
	{services.ErrAmountOutOfRange, http.StatusBadRequest},
	{services.ErrBelowMinimum, http.StatusBadRequest},
	{services.ErrInsufficientBalance, http.StatusBadRequest},
	{services.ErrUnsupportedCrypto, http.StatusBadRequest},
	{services.ErrSelfRevoke, http.StatusBadRequest},
	{services.ErrInvalidReferralCode, http.StatusBadRequest},
	{services.ErrWeakPassword, http.StatusBadRequest},
	{services.ErrInvalidResetToken, http.StatusBadRequest},
	{services.ErrInvalidPlan, http.StatusBadRequest},
	{services.ErrEmptyMessage, http.StatusBadRequest},
	{utils.ErrInvalidWalletAddress, http.StatusBadRequest},
	{utils.ErrAccountNotFound, http.StatusBadRequest},
}

// respondError maps service errors to a status. Anything unknown is logged and
// reported as a generic 500.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"error": err.Error()})
			return
		}
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"route":  c.FullPath(),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
