package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yourusername/coinvest-api/metrics"
)

// MetricsMiddleware labels requests by route template so ids do not explode cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := metrics.RequestStarted()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		done(c.Request.Method, route, c.Writer.Status())
	}
}
