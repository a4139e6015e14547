package middleware

import (
	"net/http"

	"mentorhub/models"
	"mentorhub/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects callers whose resolved role is not in the allowed set.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role := CallerIdentity(c)
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, "insufficient role", string(role))
		c.Abort()
	}
}
