package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/timexa/timexa-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email, name string, passwordHash, passwordSalt []byte, role string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}
