package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
)

const (
	DefaultHistoryLimit = 25
	MaxHistoryLimit     = 100
)

type HistoryService struct {
	matchRepo *repository.MatchRepository
}

func NewHistoryService(matchRepo *repository.MatchRepository) *HistoryService {
	return &HistoryService{matchRepo: matchRepo}
}

// GetPlayerHistory 플레이어가 참여한 매치 (최신순) 페이지 + 전체 집계
func (s *HistoryService) GetPlayerHistory(ctx context.Context, playerID string, page, limit int) (*models.PlayerHistory, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxHistoryLimit)
	}

	all, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	var (
		matches []*models.Match
		summary models.PlayerHistorySummary
	)
	for _, m := range all {
		team, ok := m.Teams.TeamOf(playerID)
		if !ok {
			continue
		}
		matches = append(matches, m)
		summary.TotalMatches++

		switch team {
		case 0:
			summary.TeamDistribution.Team0++
		case 1:
			summary.TeamDistribution.Team1++
		}

		switch {
		case m.WinningTeam == nil || team == models.TeamUnknown:
			summary.UnknownResults++
		case *m.WinningTeam == team:
			summary.Wins++
		default:
			summary.Losses++
		}
	}

	total := len(matches)
	pages := (total + limit - 1) / limit

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageMatches := make([]*models.Match, 0, end-start)
	pageMatches = append(pageMatches, matches[start:end]...)

	return &models.PlayerHistory{
		PlayerID: playerID,
		Matches:  pageMatches,
		Summary:  summary,
		Pagination: models.Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: pages,
		},
	}, nil
}
