package ports

import (
	"context"

	"github.com/quizlearn/data-gateway/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}
