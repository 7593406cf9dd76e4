package service

import (
	"context"
	"fmt"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
}

func NewClientService(clientRepo *repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// CurrentVersion 배포 중인 클라이언트 버전
func (s *ClientService) CurrentVersion(ctx context.Context) (*models.ClientVersion, error) {
	version, err := s.clientRepo.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get client version: %w", err)
	}
	if version == nil {
		return nil, ErrClientVersionNotFound
	}
	return version, nil
}

// SetVersion 배포 버전 교체 (spiderctl)
func (s *ClientService) SetVersion(ctx context.Context, version, downloadURL string) error {
	if version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidInput)
	}
	return s.clientRepo.Set(ctx, models.ClientVersion{CurrentVersion: version, DownloadURL: downloadURL})
}
