package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
	"github.com/siege-spider/spider-backend/pkg/database"
	"github.com/siege-spider/spider-backend/pkg/distributed"
	"github.com/siege-spider/spider-backend/pkg/logger"
)

// MatchNotifier 새 매치 저장 후 호출된다 (웹소켓 허브)
type MatchNotifier interface {
	NotifyMatchIngested(match *models.Match)
}

// SignatureLocker 같은 시그니처의 동시 수집을 직렬화한다
type SignatureLocker interface {
	LockSignature(ctx context.Context, signature string) (unlock func(), err error)
}

// IngestRequest 검증 전 수집 요청
type IngestRequest struct {
	Identifiers models.Teams
	WinningTeam *int
	OriginHost  string
}

type IngestService struct {
	db          *database.DB
	matchRepo   *repository.MatchRepository
	locker      SignatureLocker
	notifier    MatchNotifier
	windowHours int
	nowFn       func() time.Time
}

func NewIngestService(db *database.DB, matchRepo *repository.MatchRepository, windowHours int) *IngestService {
	if windowHours < 1 {
		windowHours = DefaultSignatureWindowHours
	}
	return &IngestService{
		db:          db,
		matchRepo:   matchRepo,
		windowHours: windowHours,
		nowFn:       time.Now,
	}
}

// SetLocker 시그니처 락 설정. nil 이면 락 없이 read-then-write
func (s *IngestService) SetLocker(locker SignatureLocker) {
	s.locker = locker
}

// SetNotifier sets the notifier (to avoid circular dependency with the hub)
func (s *IngestService) SetNotifier(notifier MatchNotifier) {
	s.notifier = notifier
}

// WithClock overrides the time provider (used in tests)
func (s *IngestService) WithClock(nowFn func() time.Time) *IngestService {
	s.nowFn = nowFn
	return s
}

// WindowHours 시그니처 버킷 크기
func (s *IngestService) WindowHours() int {
	return s.windowHours
}

// IngestMatch 매치 수집. 최근 2*window 안에 같은 시그니처가 있으면 저장 없이 그 매치를 돌려준다.
func (s *IngestService) IngestMatch(ctx context.Context, req IngestRequest) (*models.IngestResult, error) {
	if err := ValidateIdentifiers(req.Identifiers); err != nil {
		return nil, err
	}
	if req.WinningTeam != nil && *req.WinningTeam != 0 && *req.WinningTeam != 1 {
		return nil, fmt.Errorf("%w: winning_team must be 0 or 1", ErrInvalidInput)
	}

	now := s.nowFn().UTC().Truncate(time.Microsecond)
	signature := ComputeSignature(req.Identifiers, now, s.windowHours)

	if s.locker != nil {
		unlock, err := s.locker.LockSignature(ctx, signature)
		if err != nil {
			logger.Warn("Signature lock unavailable, continuing without lock",
				"signature", signature,
				"error", err,
			)
		} else {
			defer unlock()
		}
	}

	since := now.Add(-2 * time.Duration(s.windowHours) * time.Hour)

	var result *models.IngestResult
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		repo := s.matchRepo.WithTx(tx)

		existing, err := repo.FindLatestBySignature(ctx, signature, since)
		if err != nil {
			return err
		}
		if existing != nil {
			result = &models.IngestResult{
				Match:              existing,
				IsDuplicate:        true,
				CurrentRequestHost: req.OriginHost,
			}
			return nil
		}

		match := &models.Match{
			ID:            uuid.New().String(),
			Teams:         req.Identifiers,
			Signature:     &signature,
			WinningTeam:   req.WinningTeam,
			CreatedAt:     now,
			CreatedByHost: req.OriginHost,
		}
		if err := repo.Create(ctx, match); err != nil {
			return err
		}

		result = &models.IngestResult{
			Match:              match,
			CurrentRequestHost: req.OriginHost,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest match: %w", err)
	}

	if result.IsDuplicate {
		logger.Info("Duplicate match report",
			"matchID", result.Match.ID,
			"originalHost", result.Match.CreatedByHost,
			"requestHost", req.OriginHost,
		)
		return result, nil
	}

	logger.Info("Match ingested", "matchID", result.Match.ID, "host", req.OriginHost)
	if s.notifier != nil {
		s.notifier.NotifyMatchIngested(result.Match)
	}

	return result, nil
}

// redisSignatureLocker distributed.RedisLockManager 를 SignatureLocker 로 감싼다
type redisSignatureLocker struct {
	manager *distributed.RedisLockManager
}

// NewRedisSignatureLocker Redis 기반 시그니처 락
func NewRedisSignatureLocker(manager *distributed.RedisLockManager) SignatureLocker {
	return &redisSignatureLocker{manager: manager}
}

func (l *redisSignatureLocker) LockSignature(ctx context.Context, signature string) (func(), error) {
	lock, err := l.manager.Lock(ctx, signature)
	if err != nil {
		return nil, err
	}

	return func() {
		// 요청 ctx 가 취소되어도 락은 풀어야 한다
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, distributed.ErrLockNotHeld) {
			logger.Warn("Failed to release signature lock", "signature", signature, "error", err)
		}
	}, nil
}
