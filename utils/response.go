// utils/response.go
package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError sends a uniform error envelope
func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// RespondWithData sends a uniform success envelope
func RespondWithData(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}
