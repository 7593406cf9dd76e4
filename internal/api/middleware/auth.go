package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtutil "github.com/siege-spider/spider-backend/pkg/jwt"
)

// Context keys set by Auth
const (
	ContextEmail    = "email"
	ContextUsername = "username"
)

// Auth JWT 인증 미들웨어. 토큰 subject(email)를 context 에 저장한다.
func Auth(jwtManager *jwtutil.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authorization 헤더에서 토큰 추출
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// "Bearer <token>" 형식 파싱
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		// 토큰 검증
		claims, err := jwtManager.Verify(parts[1])
		if err != nil || claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Could not validate credentials",
			})
			c.Abort()
			return
		}

		c.Set(ContextEmail, claims.Subject)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}
