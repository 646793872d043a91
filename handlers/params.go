package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/services"
)

func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func pageQuery(c *gin.Context) services.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return services.NewPage(page, limit)
}

func paginated(items interface{}, total int64, page services.Page) gin.H {
	return gin.H{
		"data":  items,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	}
}

// currentProfile returns the profile loaded by JwtAuthMiddleware.
func currentProfile(c *gin.Context) (*models.Profile, bool) {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return profile, true
}
