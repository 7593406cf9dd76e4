package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/service"
	"github.com/siege-spider/spider-backend/pkg/alert"
)

type MatchHandler struct {
	ingestService   *service.IngestService
	groupingService *service.GroupingService
	historyService  *service.HistoryService
	alerter         alert.Alerter
}

func NewMatchHandler(
	ingestService *service.IngestService,
	groupingService *service.GroupingService,
	historyService *service.HistoryService,
	alerter alert.Alerter,
) *MatchHandler {
	return &MatchHandler{
		ingestService:   ingestService,
		groupingService: groupingService,
		historyService:  historyService,
		alerter:         alerter,
	}
}

// NewMatchResponse 새로 저장된 매치
type NewMatchResponse struct {
	ID          string       `json:"id"`
	Teams       models.Teams `json:"teams"`
	IsDuplicate bool         `json:"is_duplicate"`
	CreatedAt   time.Time    `json:"created_at"`
}

// DuplicateMatchResponse 이미 보고된 매치
type DuplicateMatchResponse struct {
	ID                 string       `json:"id"`
	Teams              models.Teams `json:"teams"`
	IsDuplicate        bool         `json:"is_duplicate"`
	OriginalCreatedAt  time.Time    `json:"original_created_at"`
	CreatedByHost      string       `json:"created_by_host"`
	CurrentRequestHost string       `json:"current_request_host"`
}

// IngestMatch 매치 수집
func (h *MatchHandler) IngestMatch(c *gin.Context) {
	var req models.IngestMatchRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	result, err := h.ingestService.IngestMatch(c.Request.Context(), service.IngestRequest{
		Identifiers: req.Identifiers,
		WinningTeam: req.WinningTeam,
		OriginHost:  c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		internalError(c, h.alerter, "Error [Match Ingest]", err)
		return
	}

	if result.IsDuplicate {
		c.JSON(http.StatusOK, DuplicateMatchResponse{
			ID:                 result.Match.ID,
			Teams:              result.Match.Teams,
			IsDuplicate:        true,
			OriginalCreatedAt:  result.Match.CreatedAt,
			CreatedByHost:      result.Match.CreatedByHost,
			CurrentRequestHost: result.CurrentRequestHost,
		})
		return
	}

	c.JSON(http.StatusOK, NewMatchResponse{
		ID:        result.Match.ID,
		Teams:     result.Match.Teams,
		CreatedAt: result.Match.CreatedAt,
	})
}

// TeamRelationshipsRequest 그룹 분석 요청
type TeamRelationshipsRequest struct {
	MatchID            string `json:"match_id" binding:"required"`
	MinMatchesTogether int    `json:"min_matches_together"`
}

// GetTeamRelationships 매치의 양 팀에서 자주 함께 플레이한 그룹
func (h *MatchHandler) GetTeamRelationships(c *gin.Context) {
	var req TeamRelationshipsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	result, err := h.groupingService.FindPlayerGroups(c.Request.Context(), req.MatchID, req.MinMatchesTogether)
	if err != nil {
		if errors.Is(err, service.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "No match found for the provided match ID",
			})
			return
		}

		internalError(c, h.alerter, "Error [Team Relationships]", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetPlayerHistory 플레이어 매치 기록 (?page=&limit=)
func (h *MatchHandler) GetPlayerHistory(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultHistoryLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}

	history, err := h.historyService.GetPlayerHistory(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		internalError(c, h.alerter, "Error [Player History]", err)
		return
	}

	c.JSON(http.StatusOK, history)
}
