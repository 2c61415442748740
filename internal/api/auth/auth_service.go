package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/vesmirov/fundhub/config"
	"github.com/vesmirov/fundhub/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract for authentication.
type AuthService interface {
	// Login authenticates credentials and returns an access/refresh token pair.
	// Only users that hold credentials (registered or admin) can log in.
	Login(ctx context.Context, email, password string) (string, string, error)

	// Refresh rotates a refresh token, revoking the old one.
	Refresh(ctx context.Context, refreshToken string) (string, string, error)

	// Logout revokes a refresh token.
	Logout(ctx context.Context, refreshToken string) error

	// GetCurrentUser resolves the identity behind a user id, read-through
	// cached so the permission predicates do not hit the store per request.
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// InvalidateAllSessions revokes every refresh token a user holds and
	// drops the cached identity.
	InvalidateAllSessions(ctx context.Context, userID uuid.UUID) error
}

// AuthServiceImpl provides the implementation for AuthService.
type AuthServiceImpl struct {
	logger    *slog.Logger
	repo      AuthRepo
	jwtCfg    config.JWTConfig
	userCache *cache.Cache
}

// NewAuthService creates a new auth service instance.
func NewAuthService(repo AuthRepo, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:    logger,
		repo:      repo,
		jwtCfg:    cfg.JWT,
		userCache: cache.New(time.Minute, 5*time.Minute),
	}
}

func (s *AuthServiceImpl) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// generateRefreshToken creates a random opaque refresh token.
func generateRefreshToken() string {
	return uuid.NewString()
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			span.SetStatus(codes.Error, "unknown email")
			return "", "", types.ErrUnauthenticated
		}
		return "", "", fmt.Errorf("login: %w", err)
	}

	// Unregistered users carry no credentials and cannot log in.
	if !user.IsRegistered() || user.PasswordHash == nil {
		l.WarnContext(ctx, "Login attempt for user without credentials")
		span.SetStatus(codes.Error, "no credentials")
		return "", "", types.ErrUnauthenticated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		span.SetStatus(codes.Error, "bad password")
		return "", "", types.ErrUnauthenticated
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	refreshToken := generateRefreshToken()
	expiresAt := time.Now().Add(s.jwtCfg.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return "", "", fmt.Errorf("login: %w", err)
	}

	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID.String()))
	span.SetStatus(codes.Ok, "logged in")
	return accessToken, refreshToken, nil
}

func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	l := s.logger.With(slog.String("method", "Refresh"))

	userID, expiresAt, revokedAt, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", "", types.ErrUnauthenticated
		}
		return "", "", fmt.Errorf("refresh: %w", err)
	}

	if time.Now().After(expiresAt) || revokedAt != nil {
		return "", "", types.ErrUnauthenticated
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("refresh: %w", err)
	}

	newAccessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	newRefreshToken := generateRefreshToken()
	newExpiresAt := time.Now().Add(s.jwtCfg.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, userID, newRefreshToken, newExpiresAt); err != nil {
		return "", "", fmt.Errorf("refresh: %w", err)
	}

	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		l.WarnContext(ctx, "Failed to invalidate old refresh token", slog.Any("error", err))
	}

	return newAccessToken, newRefreshToken, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.InvalidateRefreshToken(ctx, refreshToken)
}

func (s *AuthServiceImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if cached, found := s.userCache.Get(userID.String()); found {
		return cached.(*types.User), nil
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.userCache.SetDefault(userID.String(), user)
	return user, nil
}

func (s *AuthServiceImpl) InvalidateAllSessions(ctx context.Context, userID uuid.UUID) error {
	s.userCache.Delete(userID.String())
	return s.repo.InvalidateAllUserRefreshTokens(ctx, userID)
}
