package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
	"github.com/siege-spider/spider-backend/pkg/cache"
	"github.com/siege-spider/spider-backend/pkg/profile"
)

// ProfileLookup 외부 플레이어 프로필 서비스
type ProfileLookup interface {
	LookupByID(ctx context.Context, profileID string) (*models.PlayerProfile, error)
	LookupByHandle(ctx context.Context, handle string) (*models.PlayerProfile, error)
}

type ProfileService struct {
	lookup    ProfileLookup
	cache     *cache.RedisCache
	cacheTTL  time.Duration
	matchRepo *repository.MatchRepository
}

// NewProfileService cache 가 nil 이면 캐시 없이 매번 조회
func NewProfileService(lookup ProfileLookup, c *cache.RedisCache, cacheTTL time.Duration, matchRepo *repository.MatchRepository) *ProfileService {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &ProfileService{
		lookup:    lookup,
		cache:     c,
		cacheTTL:  cacheTTL,
		matchRepo: matchRepo,
	}
}

// LookupByID 프로필 ID 조회 (캐시)
func (s *ProfileService) LookupByID(ctx context.Context, profileID string) (*models.PlayerProfile, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, fmt.Errorf("%w: profile id is required", ErrInvalidInput)
	}
	p, err := cache.GetOrLoad(ctx, s.cache, "profile_id:"+profileID, s.cacheTTL,
		func(ctx context.Context) (*models.PlayerProfile, error) {
			return s.lookup.LookupByID(ctx, profileID)
		})
	return p, mapProfileError(err)
}

// LookupByHandle 닉네임 조회 (캐시)
func (s *ProfileService) LookupByHandle(ctx context.Context, handle string) (*models.PlayerProfile, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, fmt.Errorf("%w: handle is required", ErrInvalidInput)
	}
	key := "uplay:" + strings.ToLower(handle)
	p, err := cache.GetOrLoad(ctx, s.cache, key, s.cacheTTL,
		func(ctx context.Context) (*models.PlayerProfile, error) {
			return s.lookup.LookupByHandle(ctx, handle)
		})
	return p, mapProfileError(err)
}

// LookupMatchPlayers 매치 참가자 전원의 프로필 + 팀 (저장된 순서 유지)
func (s *ProfileService) LookupMatchPlayers(ctx context.Context, matchID string) ([]models.MatchPlayerProfile, error) {
	match, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}

	players := make([]models.MatchPlayerProfile, len(match.Teams))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, entry := range match.Teams {
		g.Go(func() error {
			p, err := s.LookupByID(gctx, entry.PlayerID)
			if err != nil {
				return fmt.Errorf("player %s: %w", entry.PlayerID, err)
			}
			players[i] = models.MatchPlayerProfile{PlayerProfile: *p, Team: entry.Team}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return players, nil
}

func mapProfileError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, profile.ErrNotFound):
		return ErrProfileNotFound
	default:
		return fmt.Errorf("profile lookup failed: %w", err)
	}
}
