package middlewares

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resto-ops/utils"
)

// AuthMiddleware memvalidasi JWT dan menaruh tenant, user, dan role ke
// context. Semua entity di bawahnya ter-scope ke tenant dari token ini.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			// Koneksi websocket tidak bisa set header custom dari browser
			token = "Bearer " + c.Query("token")
		}

		tokenString := strings.TrimPrefix(token, "Bearer ")
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization token missing"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}
		if claims.UserID == 0 || claims.TenantID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid token claims"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", claims.TenantID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRoles membatasi endpoint ke role tertentu.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.RespondError(c, http.StatusForbidden, errors.New("you don't have permission for this action"))
		c.Abort()
	}
}

// TenantID -> helper ambil tenant dari context
func TenantID(c *gin.Context) uint {
	if v, ok := c.Get("tenant_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// Actor -> identitas pelaku untuk audit log, fallback "system"
func Actor(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok && id != 0 {
			return "user:" + strconv.FormatUint(uint64(id), 10)
		}
	}
	return "system"
}
