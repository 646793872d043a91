package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/services"
)

type InvestmentHandler struct {
	investments *services.InvestmentService
	log         *logrus.Logger
}

func NewInvestmentHandler(investments *services.InvestmentService, log *logrus.Logger) *InvestmentHandler {
	return &InvestmentHandler{investments: investments, log: log}
}

// CreditROIRequest takes either a fixed amount or a percentage of principal.
type CreditROIRequest struct {
	Amount     *decimal.Decimal `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage"`
	Note       string           `json:"note" binding:"max=500"`
}

func (h *InvestmentHandler) List(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	investments, err := h.investments.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, investments)
}

func (h *InvestmentHandler) AdminList(c *gin.Context) {
	page := pageQuery(c)
	investments, total, err := h.investments.List(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(investments, total, page))
}

func (h *InvestmentHandler) CreditROI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req CreditROIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.Amount == nil) == (req.Percentage == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide exactly one of amount or percentage"})
		return
	}
	adminID, _ := middleware.CurrentUserID(c)

	investment, credited, err := h.investments.CreditROI(c.Request.Context(), id, adminID, services.ROICredit{
		Amount:     req.Amount,
		Percentage: req.Percentage,
		Note:       req.Note,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"investment": investment,
		"credited":   credited,
	})
}
