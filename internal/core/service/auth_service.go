package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizlearn/data-gateway/internal/core/domain"
	"github.com/quizlearn/data-gateway/internal/core/ports"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// AuthService implements registration, login and token verification for the
// quiz platform. Tokens are HS256 JWTs carrying the user id and email; the
// user collection is the only collection auth ever touches.
type AuthService struct {
	repo       ports.UserRepository
	limiter    ports.LoginLimiter
	jwtSecret  string
	tokenTTL   time.Duration
	adminEmail string
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(repo ports.UserRepository, limiter ports.LoginLimiter, jwtSecret, adminEmail string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		repo:       repo,
		limiter:    limiter,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		adminEmail: adminEmail,
		log:        log,
		now:        time.Now,
	}
}

// Register creates a user record with gamification defaults seeded and the
// role fixed by the admin allow-list. Uniqueness of the email is enforced by
// the repository (unique index), not by a read-then-write check, so two
// concurrent registrations cannot both succeed. No token is issued; callers
// chain a login afterwards.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	role := domain.RoleStudent
	if email == s.adminEmail {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		Email:           email,
		PasswordHash:    string(hash),
		Name:            name,
		Role:            role,
		XP:              domain.DefaultXP,
		CurrentStreak:   domain.DefaultCurrentStreak,
		LongestStreak:   domain.DefaultLongestStreak,
		DailyXP:         domain.DefaultDailyXP,
		DailyXPGoal:     domain.DefaultDailyXPGoal,
		LastLoginDate:   domain.DateOnly(now),
		LastXPResetDate: domain.DateOnly(now),
		LastQuizDate:    nil,
		CreatedAt:       now,
	}

	return s.repo.Create(ctx, user)
}

// Login verifies the credentials and returns a session token plus the
// sanitized user. A missing account and a wrong password produce the same
// error so the response never reveals whether the email is registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.checkThrottle(ctx, email); err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}

	today := domain.DateOnly(s.now())
	if err := s.repo.UpdateLastLogin(ctx, user.ID, today); err != nil {
		return "", nil, err
	}
	user.LastLoginDate = today

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("login limiter reset failed")
		}
	}

	return token, user, nil
}

// VerifyToken is the session re-entry check run by the client on every page
// load: decode, check expiry, confirm the user still exists.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   s.now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// checkThrottle asks the limiter whether another attempt is allowed. Limiter
// outages fail open: losing the cache must not lock everyone out.
func (s *AuthService) checkThrottle(ctx context.Context, email string) error {
	if s.limiter == nil {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, failing open")
		return nil
	}
	if !ok {
		return domain.ErrTooManyAttempts
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login limiter record failed")
	}
}
