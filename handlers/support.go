package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/services"
)

type SupportHandler struct {
	support *services.SupportService
	log     *logrus.Logger
}

func NewSupportHandler(support *services.SupportService, log *logrus.Logger) *SupportHandler {
	return &SupportHandler{support: support, log: log}
}

type OpenConversationRequest struct {
	Subject string `json:"subject" binding:"required,max=255"`
	Content string `json:"content" binding:"required,max=5000"`
}

type PostMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

func (h *SupportHandler) Open(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var req OpenConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversation, message, err := h.support.Open(c.Request.Context(), profile, req.Subject, req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"conversation": conversation,
		"message":      message,
	})
}

// List shows the caller's conversations.
func (h *SupportHandler) List(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	page := pageQuery(c)
	conversations, total, err := h.support.List(c.Request.Context(), &profile.ID, c.Query("status"), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(conversations, total, page))
}

// AdminList shows every user's conversations.
func (h *SupportHandler) AdminList(c *gin.Context) {
	page := pageQuery(c)
	conversations, total, err := h.support.List(c.Request.Context(), nil, c.Query("status"), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(conversations, total, page))
}

// Messages supports polling with ?since=<RFC3339>.
func (h *SupportHandler) Messages(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
			return
		}
		since = &t
	}

	messages, err := h.support.Messages(c.Request.Context(), id, profile, since)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *SupportHandler) Post(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.support.Post(c.Request.Context(), id, profile, req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *SupportHandler) Close(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	conversation, err := h.support.Close(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, conversation)
}
