package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// Register 새 사용자 등록 (spiderctl 전용, HTTP 로는 노출하지 않는다)
func (s *UserService) Register(ctx context.Context, username, email, password string) error {
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return ErrInvalidInput
	}

	// 비밀번호 해싱
	passwordHash, err := models.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.Create(ctx, username, email, passwordHash); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Login 로그인
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	// 사용자 찾기
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 비밀번호 확인
	if !user.CheckPassword(strings.TrimSpace(password)) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByEmail 토큰 subject(email)로 사용자 조회
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
