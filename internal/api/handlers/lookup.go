package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/service"
	"github.com/siege-spider/spider-backend/pkg/alert"
)

// LookupHandler 외부 프로필 서비스 조회
type LookupHandler struct {
	profileService *service.ProfileService
	alerter        alert.Alerter
}

// NewLookupHandler profileService 가 nil 이면 모든 조회가 503
func NewLookupHandler(profileService *service.ProfileService, alerter alert.Alerter) *LookupHandler {
	return &LookupHandler{
		profileService: profileService,
		alerter:        alerter,
	}
}

func (h *LookupHandler) available(c *gin.Context) bool {
	if h.profileService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Profile lookup is not configured",
		})
		return false
	}
	return true
}

// LookupByProfileID GET /lookup/profile_id/:id
func (h *LookupHandler) LookupByProfileID(c *gin.Context) {
	if !h.available(c) {
		return
	}

	player, err := h.profileService.LookupByID(c.Request.Context(), c.Param("id"))
	h.respondProfile(c, "Error [Profile ID Lookup]", player, err)
}

// LookupByUplay GET /lookup/uplay/:handle
func (h *LookupHandler) LookupByUplay(c *gin.Context) {
	if !h.available(c) {
		return
	}

	player, err := h.profileService.LookupByHandle(c.Request.Context(), c.Param("handle"))
	h.respondProfile(c, "Error [Uplay Lookup]", player, err)
}

func (h *LookupHandler) respondProfile(c *gin.Context, title string, player *models.PlayerProfile, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, player)
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		internalError(c, h.alerter, title, err)
	}
}

// LookupMatchPlayers POST /lookup/match — 매치 참가자 전원 프로필 + 팀
func (h *LookupHandler) LookupMatchPlayers(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req models.MatchLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	players, err := h.profileService.LookupMatchPlayers(c.Request.Context(), req.MatchID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, players)
	case errors.Is(err, service.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No match found for the provided match ID"})
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
	default:
		internalError(c, h.alerter, "Error [Match Lookup]", err)
	}
}
