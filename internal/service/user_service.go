package service

import (
	"context"

	"github.com/timexa/timexa-backend/internal/domain"
	"github.com/timexa/timexa-backend/internal/repository/ports"
)

type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	limit, offset = normalizeUserPagination(limit, offset)
	return s.users.List(ctx, limit, offset)
}

func normalizeUserPagination(limit, offset int) (int, int) {
	const (
		defaultLimit = 50
		maxLimit     = 200
	)

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
