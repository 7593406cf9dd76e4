package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS rs/cors 를 gin 미들웨어로 감싼다. preflight 요청은 여기서 끝낸다.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	handler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return func(c *gin.Context) {
		handler.HandlerFunc(c.Writer, c.Request)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Abort()
			return
		}

		c.Next()
	}
}
