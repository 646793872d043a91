package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/services"
)

type WithdrawalHandler struct {
	withdrawals *services.WithdrawalService
	log         *logrus.Logger
}

func NewWithdrawalHandler(withdrawals *services.WithdrawalService, log *logrus.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals, log: log}
}

type CreateWithdrawalRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	CryptoType    string          `json:"crypto_type" binding:"required,cryptotype"`
	WalletAddress string          `json:"wallet_address" binding:"required,max=128"`
}

type ApproveWithdrawalRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

type CompleteWithdrawalRequest struct {
	TxHash string `json:"tx_hash" binding:"max=128"`
}

func (h *WithdrawalHandler) Create(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	withdrawal, err := h.withdrawals.Request(c.Request.Context(), profile, services.WithdrawalInput{
		Amount:        req.Amount,
		CryptoType:    req.CryptoType,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, withdrawal)
}

func (h *WithdrawalHandler) List(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	withdrawals, err := h.withdrawals.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withdrawals)
}

func (h *WithdrawalHandler) AdminList(c *gin.Context) {
	page := pageQuery(c)
	withdrawals, total, err := h.withdrawals.List(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(withdrawals, total, page))
}

func (h *WithdrawalHandler) Approve(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ApproveWithdrawalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	adminID, _ := middleware.CurrentUserID(c)

	result, err := h.withdrawals.Approve(c.Request.Context(), id, adminID, req.Note)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *WithdrawalHandler) Reject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID, _ := middleware.CurrentUserID(c)

	withdrawal, err := h.withdrawals.Reject(c.Request.Context(), id, adminID, req.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) Complete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req CompleteWithdrawalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	adminID, _ := middleware.CurrentUserID(c)

	withdrawal, err := h.withdrawals.Complete(c.Request.Context(), id, adminID, req.TxHash)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withdrawal)
}
