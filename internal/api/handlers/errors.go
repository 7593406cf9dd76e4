package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siege-spider/spider-backend/pkg/alert"
	"github.com/siege-spider/spider-backend/pkg/logger"
)

// internalError 로그 + 알림 후 500. 응답 본문에는 내부 정보를 넣지 않는다.
func internalError(c *gin.Context, alerter alert.Alerter, title string, err error) {
	logger.Error(title,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"client", c.ClientIP(),
		"error", err,
	)
	if alerter != nil {
		alerter.SendException(title, fmt.Errorf("%s %s (client %s): %w",
			c.Request.Method, c.Request.URL.Path, c.ClientIP(), err))
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}
