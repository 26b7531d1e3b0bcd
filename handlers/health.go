package handlers

import (
	"net/http"

	"casamar/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest health snapshot of mongo and redis.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"health": utils.GetHealthStatus(),
	})
}
