package ports

import (
	"context"

	"github.com/quizlearn/data-gateway/internal/core/domain"
)

// UserRepository defines user persistence for the auth subsystem.
// Create must rely on a unique email index and report domain.ErrUserExists
// on conflict, so that two concurrent registrations cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, date string) error
}
