package middleware

import "github.com/gin-gonic/gin"

// operatorIDKey is the key used to store the authenticated operator's ID.
const operatorIDKey = contextKey("operatorID")

// GetOperatorIDFromContext retrieves the authenticated operator ID set by AuthMiddleware.
func GetOperatorIDFromContext(c *gin.Context) (string, bool) {
	if v, ok := c.Request.Context().Value(operatorIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
