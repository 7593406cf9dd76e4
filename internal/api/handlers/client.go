package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siege-spider/spider-backend/internal/service"
	"github.com/siege-spider/spider-backend/pkg/alert"
)

type ClientHandler struct {
	clientService *service.ClientService
	alerter       alert.Alerter
}

func NewClientHandler(clientService *service.ClientService, alerter alert.Alerter) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		alerter:       alerter,
	}
}

// GetVersion 배포 중인 클라이언트 버전
func (h *ClientHandler) GetVersion(c *gin.Context) {
	version, err := h.clientService.CurrentVersion(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrClientVersionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Client version not found",
			})
			return
		}

		internalError(c, h.alerter, "Error [Client Version]", err)
		return
	}

	c.JSON(http.StatusOK, version)
}
