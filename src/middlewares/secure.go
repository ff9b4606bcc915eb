package middlewares

import "github.com/gin-gonic/gin"

// SecureHeaders sets the response headers every page and API response carries.
func SecureHeaders(ctx *gin.Context) {
	h := ctx.Writer.Header()
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("X-XSS-Protection", "0")
	ctx.Next()
}
