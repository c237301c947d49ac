package auth

import (
	"net/http"
	"strings"

	"shophub/internal/dto"

	"github.com/gin-gonic/gin"
)

const CtxSubject = "auth_subject"

// JWT пропускает только пользовательские HS256-токены.
func JWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearer(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}
		claims, err := ParseToken(secret, token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		c.Set(CtxSubject, claims.Subject)
		c.Next()
	}
}

// ServiceToken пропускает только статический сервисный токен
// (межсервисные вызовы: internal lookup, оркестратор).
func ServiceToken(serviceToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearer(c.GetHeader("Authorization"))
		if !ok || token != serviceToken {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

// Any принимает либо сервисный токен, либо пользовательский JWT.
func Any(secret, serviceToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearer(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}
		if token == serviceToken {
			c.Next()
			return
		}
		claims, err := ParseToken(secret, token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		c.Set(CtxSubject, claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewError("UNAUTHORIZED", "missing or invalid credentials", nil))
}

func extractBearer(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.TrimSpace(parts[1])
	if t == "" {
		return "", false
	}
	return t, true
}
