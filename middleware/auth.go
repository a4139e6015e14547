package middleware

import (
	"errors"
	"net/http"
	"strings"

	"mentorhub/config"
	"mentorhub/models"
	"mentorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys for the resolved caller identity.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// AuthMiddleware resolves the caller to {userId, role} from a bearer token.
// The role claim is mapped to the closed Role enumeration here, once; the
// engine downstream only re-validates ownership, never authentication.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "missing bearer token", "")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(config.AppConfig.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			utils.JSONError(c, http.StatusUnauthorized, "invalid token", "")
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		rawRole, _ := claims["role"].(string)
		role, err := models.ParseRole(rawRole)
		if sub == "" || err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "token missing subject or role", "")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, sub)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// CallerIdentity extracts the identity placed by AuthMiddleware.
func CallerIdentity(c *gin.Context) (string, models.Role) {
	userID := c.GetString(ContextUserIDKey)
	role, _ := c.Get(ContextRoleKey)
	r, _ := role.(models.Role)
	return userID, r
}
