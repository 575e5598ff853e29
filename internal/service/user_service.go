package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	"github.com/kpmisthah/twaybastore-admin/internal/repository"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrBanReasonMissing = errors.New("a ban reason is required")
)

type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.ListUsers(ctx)
}

func (s *UserService) BanUser(ctx context.Context, userID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrBanReasonMissing
	}

	if err := s.userRepo.SetBanned(ctx, userID, true, reason); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info("User banned",
		zap.String("user_id", userID),
		zap.String("reason", reason))
	return nil
}

func (s *UserService) UnbanUser(ctx context.Context, userID string) error {
	if err := s.userRepo.SetBanned(ctx, userID, false, ""); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info("User unbanned",
		zap.String("user_id", userID))
	return nil
}
