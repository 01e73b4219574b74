package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/stayhaven/service-booking/internal/auth"
	"github.com/stayhaven/service-booking/internal/domain"
	userDomain "github.com/stayhaven/service-booking/internal/domain/user"
)

// RegisterRequest holds the data needed to create an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest holds the credentials for an existing account.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued access token.
type AuthResponse struct {
	Token string `json:"token"`
}

// AuthService registers accounts and issues access tokens.
type AuthService struct {
	users  userDomain.Repository
	jwt    *auth.JWTManager
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users userDomain.Repository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwtManager, logger: logger}
}

// Register creates an account and returns a token for it. Role defaults to
// USER when the request does not name one.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := userDomain.RoleUser
	if req.Role != "" {
		parsed, err := userDomain.ParseRole(req.Role)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		role = parsed
	}

	exists, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflictError("username already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := userDomain.NewUser(req.Username, hash, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(u)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID().String()),
		zap.String("username", u.Username()),
		zap.String("role", string(u.Role())),
	)
	return &AuthResponse{Token: token}, nil
}

// Login verifies credentials and returns a fresh token. Unknown usernames and
// wrong passwords yield the same response.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid username or password")
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash(), req.Password) {
		return nil, domain.NewUnauthorizedError("invalid username or password")
	}

	token, err := s.jwt.Generate(u)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", u.ID().String()),
		zap.String("username", u.Username()),
	)
	return &AuthResponse{Token: token}, nil
}
