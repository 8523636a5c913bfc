package auth

import (
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskcore/task-management/internal"
)

// UserRepository is the credential/identity lookup the auth service needs.
type UserRepository interface {
	GetCredentialsByEmail(email string) (passwordHash string, userID int64, isActive bool, err error)
	GetPrincipal(userID int64) (*internal.Principal, error)
}

// Service authenticates users and builds the request principal.
type Service struct {
	userRepo       UserRepository
	tokenGenerator *JWTTokenGenerator
	logger         *slog.Logger
	bcryptCost     int
}

func NewService(userRepo UserRepository, tokenGen *JWTTokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		logger:         logger,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

// Authenticate validates credentials and returns a token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	storedHash, userID, isActive, err := s.userRepo.GetCredentialsByEmail(dto.Email)
	if err != nil {
		s.logger.Warn("login failed: user lookup", "email", dto.Email)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !isActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if err := VerifyPassword(storedHash, dto.Password); err != nil {
		s.logger.Warn("login failed: password mismatch", "user_id", userID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	return s.issueTokens(strconv.FormatInt(userID, 10), dto.Email)
}

// RefreshTokens validates a refresh token and rotates the pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(claims.UserID, claims.Email)
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// GetPrincipal loads the principal descriptor for an authenticated user id.
func (s *Service) GetPrincipal(userID int64) (*internal.Principal, error) {
	return s.userRepo.GetPrincipal(userID)
}

func (s *Service) issueTokens(userID, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
