package identity

import (
	"context"
	"errors"
	"time"

	"github.com/farmledger/backend/internal/domain/identity"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // failed attempts before the farmer is locked out
	LockDuration     time.Duration // how long a lockout lasts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

var (
	ErrInvalidCredentials = shared.NewDomainError(shared.KindUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	ErrAccountLocked      = shared.NewDomainError(shared.KindUnauthorized, "ACCOUNT_LOCKED", "Account is locked. Please try again later")
	ErrAccountInactive    = shared.NewDomainError(shared.KindUnauthorized, "ACCOUNT_INACTIVE", "Account is not active")
	ErrUsernameTaken      = shared.NewDomainError(shared.KindConflict, "USERNAME_EXISTS", "Username is already taken")
)

// AuthService registers farmers and issues their tokens
type AuthService struct {
	farmers   identity.FarmerRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	config    AuthServiceConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	farmers identity.FarmerRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		farmers:   farmers,
		tokens:    tokens,
		blacklist: blacklist,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

func toFarmerInfo(f *identity.Farmer) *FarmerInfo {
	return &FarmerInfo{
		ID:          f.ID,
		Username:    f.Username,
		DisplayName: f.Name(),
		LastLoginAt: f.LastLoginAt,
	}
}

func toTokenResponse(pair *auth.TokenPair, f *identity.Farmer) *TokenResponse {
	resp := &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
	if f != nil {
		resp.Farmer = toFarmerInfo(f)
	}
	return resp
}

// Register creates a new farmer account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*FarmerInfo, error) {
	farmer, err := identity.NewFarmer(req.Username, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}

	exists, err := s.farmers.ExistsByUsername(ctx, farmer.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}
	if err := s.farmers.Create(ctx, farmer); err != nil {
		return nil, err
	}

	s.logger.Info("Farmer registered",
		zap.String("farmer_id", farmer.ID.String()),
		zap.String("username", farmer.Username))
	return toFarmerInfo(farmer), nil
}

// Login authenticates a farmer and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	now := s.now()

	farmer, err := s.farmers.FindByUsername(ctx, req.Username)
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("Login for unknown username", zap.String("username", req.Username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !farmer.CanLogin(now) {
		if farmer.IsLocked(now) {
			s.logger.Warn("Login attempt for locked account", zap.String("username", farmer.Username))
			return nil, ErrAccountLocked
		}
		return nil, ErrAccountInactive
	}

	if !farmer.VerifyPassword(req.Password) {
		locked := farmer.RecordLoginFailure(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.farmers.Update(ctx, farmer); err != nil {
			s.logger.Error("Failed to update farmer after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", farmer.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(farmer.ID, farmer.Username)
	if err != nil {
		return nil, err
	}

	farmer.RecordLoginSuccess(now)
	if err := s.farmers.Update(ctx, farmer); err != nil {
		// the tokens are already valid; a lost last-login timestamp is not worth failing the login
		s.logger.Error("Failed to update farmer after successful login", zap.Error(err))
	}

	s.logger.Info("Farmer logged in", zap.String("farmer_id", farmer.ID.String()))
	return toTokenResponse(pair, farmer), nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(shared.KindUnauthorized, "TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError(shared.KindUnauthorized, "TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenRevoked):
		return shared.NewDomainError(shared.KindUnauthorized, "TOKEN_REVOKED", "Token has been revoked")
	default:
		return shared.NewDomainError(shared.KindUnauthorized, "TOKEN_INVALID", "Invalid refresh token")
	}
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair is issued
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, tokenError(auth.ErrTokenRevoked)
	}

	farmerID, err := claims.FarmerUUID()
	if err != nil {
		return nil, tokenError(auth.ErrInvalidClaims)
	}
	farmer, err := s.farmers.FindByID(ctx, farmerID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrAccountInactive
		}
		return nil, err
	}
	if !farmer.CanLogin(s.now()) {
		return nil, ErrAccountInactive
	}

	pair, _, err := s.tokens.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
		s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
	}
	return toTokenResponse(pair, nil), nil
}

// Logout revokes the presented access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	if err := s.blacklist.Revoke(ctx, in.AccessTokenID, in.AccessTokenTTL); err != nil {
		return err
	}
	if in.RefreshToken != "" {
		if claims, err := s.tokens.ValidateRefreshToken(in.RefreshToken); err == nil {
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
				return err
			}
		}
	}
	s.logger.Info("Farmer logged out", zap.String("farmer_id", in.FarmerID.String()))
	return nil
}

// CurrentFarmer returns the authenticated farmer
func (s *AuthService) CurrentFarmer(ctx context.Context, farmerID uuid.UUID) (*FarmerInfo, error) {
	farmer, err := s.farmers.FindByID(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	return toFarmerInfo(farmer), nil
}
