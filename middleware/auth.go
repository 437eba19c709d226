package middleware

import (
	"net/http"
	"strings"

	"Perish/pkg/context"
	"Perish/pkg/jwt"
	"Perish/pkg/response"

	"github.com/gin-gonic/gin"
)

var errUnauthorized = response.NewError(http.StatusUnauthorized, "UNAUTHORIZED", "请先登录")

// Auth 必须携带有效的 access token
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := parseBearer(c, secret)
		if !ok {
			response.Abort(c, errUnauthorized)
			return
		}
		c.Set(context.CtxUserID, uid)
		c.Next()
	}
}

// OptionalAuth 有 token 就解析，没有或者无效按匿名访问处理
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := parseBearer(c, secret); ok {
			c.Set(context.CtxUserID, uid)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, secret []byte) (uint64, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return 0, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}
	claims, err := jwt.ParseToken(secret, "access", parts[1])
	if err != nil || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}
