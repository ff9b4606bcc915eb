package middlewares

import (
	"cinco/src/config"
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminSecret guards the admin routes with the shared x-secret header.
func AdminSecret(ctx *gin.Context) {
	secret := config.AdminAPISecret()
	if secret == "" {
		log.Println("ADMIN_API_SECRET is not set. Rejecting admin request")
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin access is not configured"})
		return
	}
	given := ctx.GetHeader("x-secret")
	if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Next()
}
