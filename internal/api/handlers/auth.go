package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/service"
	"github.com/siege-spider/spider-backend/pkg/alert"
	jwtutil "github.com/siege-spider/spider-backend/pkg/jwt"
	"github.com/siege-spider/spider-backend/pkg/logger"
)

type AuthHandler struct {
	userService *service.UserService
	jwtManager  *jwtutil.JWTManager
	alerter     alert.Alerter
}

func NewAuthHandler(userService *service.UserService, jwtManager *jwtutil.JWTManager, alerter alert.Alerter) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtManager,
		alerter:     alerter,
	}
}

// TokenResponse OAuth2 password flow 형식
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token 이메일/비밀번호로 액세스 토큰 발급
func (h *AuthHandler) Token(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	// 사용자 인증
	user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Incorrect credentials",
			})
			return
		}

		internalError(c, h.alerter, "Error [Token]", err)
		return
	}

	// JWT 토큰 생성
	token, err := h.jwtManager.Generate(user.Email, user.Username)
	if err != nil {
		internalError(c, h.alerter, "Error [Token]", err)
		return
	}

	logger.Info("User logged in", "userId", user.ID, "email", user.Email)

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
