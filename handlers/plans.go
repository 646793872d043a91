package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/services"
)

type PlanHandler struct {
	plans *services.PlanService
	log   *logrus.Logger
}

func NewPlanHandler(plans *services.PlanService, log *logrus.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, log: log}
}

type PlanRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	DailyROI     decimal.Decimal `json:"daily_roi"`
	TotalROI     decimal.Decimal `json:"total_roi"`
	DurationDays int             `json:"duration_days" binding:"required,gt=0"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	IsActive     *bool           `json:"is_active"`
}

func (r PlanRequest) input() services.PlanInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return services.PlanInput{
		Name:         r.Name,
		DailyROI:     r.DailyROI,
		TotalROI:     r.TotalROI,
		DurationDays: r.DurationDays,
		MinAmount:    r.MinAmount,
		MaxAmount:    r.MaxAmount,
		IsActive:     active,
	}
}

func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.plans.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	plan, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// AdminList includes inactive plans.
func (h *PlanHandler) AdminList(c *gin.Context) {
	plans, err := h.plans.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := h.plans.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := h.plans.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
