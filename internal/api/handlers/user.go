package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siege-spider/spider-backend/internal/api/middleware"
	"github.com/siege-spider/spider-backend/internal/service"
	"github.com/siege-spider/spider-backend/pkg/alert"
)

type UserHandler struct {
	userService *service.UserService
	alerter     alert.Alerter
}

func NewUserHandler(userService *service.UserService, alerter alert.Alerter) *UserHandler {
	return &UserHandler{
		userService: userService,
		alerter:     alerter,
	}
}

// GetCurrentUser 현재 로그인한 사용자
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	email := c.GetString(middleware.ContextEmail)

	user, err := h.userService.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// 토큰은 유효하지만 사용자가 삭제됨
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Could not validate credentials",
			})
			return
		}

		internalError(c, h.alerter, "Error [Current User]", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"email":    user.Email,
	})
}
