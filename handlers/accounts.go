package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/services"
	"github.com/yourusername/coinvest-api/utils"
)

// AccountHandler serves the caller's dashboard, ledger and referrals, and the
// admin user-management routes.
type AccountHandler struct {
	accounts  *services.AccountService
	referrals *services.ReferralService
	storage   utils.ProofStorage
	log       *logrus.Logger
}

func NewAccountHandler(accounts *services.AccountService, referrals *services.ReferralService, storage utils.ProofStorage, log *logrus.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, referrals: referrals, storage: storage, log: log}
}

type SetAdminRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Action string `json:"action" binding:"required,oneof=grant revoke"`
}

func (h *AccountHandler) Dashboard(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	dash, err := h.accounts.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *AccountHandler) Transactions(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	page := pageQuery(c)
	txs, total, err := h.accounts.Transactions(c.Request.Context(), userID, c.Query("type"), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(txs, total, page))
}

func (h *AccountHandler) Referrals(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	summary, err := h.referrals.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AccountHandler) ListUsers(c *gin.Context) {
	page := pageQuery(c)
	users, total, err := h.accounts.ListUsers(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(users, total, page))
}

func (h *AccountHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	detail, err := h.accounts.UserDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resignProofs(c.Request.Context(), h.storage, h.log, detail.Deposits)
	c.JSON(http.StatusOK, detail)
}

func (h *AccountHandler) ListAdmins(c *gin.Context) {
	admins, err := h.accounts.ListAdmins(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, admins)
}

func (h *AccountHandler) SetAdmin(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.accounts.SetAdmin(c.Request.Context(), actor, req.Email, req.Action == "grant")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AccountHandler) Stats(c *gin.Context) {
	stats, err := h.accounts.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
