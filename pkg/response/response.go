package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes a success envelope, merging extra fields into it.
func Success(c *gin.Context, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Error writes the error envelope used across the API.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
