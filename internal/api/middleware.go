package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// passwordHeader carries the shared dashboard password on every API call.
const passwordHeader = "X-Dashboard-Key"

// RequirePassword gates the API behind the app password. An empty password
// disables the gate. The comparison is constant-time.
func RequirePassword(password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if password == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(passwordHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(password)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid dashboard key"})
			return
		}
		c.Next()
	}
}

// CORSMiddleware allows the dashboard frontend to call from any origin.
func CORSMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", passwordHeader}
	return cors.New(cfg)
}
