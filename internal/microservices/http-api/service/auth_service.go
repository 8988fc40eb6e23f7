package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	confirmationSubject = "Your yamdb confirmation code"
)

// Notifier delivers a message to an email address. Implementations must not
// block the caller for long; delivery is best effort.
type Notifier interface {
	Notify(to, subject, body string)
}

// Claims are carried by both access and refresh tokens. Subject is the user id;
// a refresh token's ID is the id of its RefreshToken row.
type Claims struct {
	Username string `json:"username,omitempty"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

// TokenPair is what a successful code exchange or refresh returns.
type TokenPair struct {
	Access  string
	Refresh string
}

type AuthService interface {
	RequestSignup(ctx context.Context, username, email string) (*models.User, error)
	ObtainToken(ctx context.Context, username, code string) (*TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (*TokenPair, error)
	RevokeToken(ctx context.Context, refresh string) error
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	notifier         Notifier
	jwtSecret        []byte
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	codeTTL          time.Duration
	now              func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	notifier Notifier,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		notifier:         notifier,
		jwtSecret:        []byte(cfg.JWTSecret),
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
		codeTTL:          cfg.ConfirmationCodeTTL,
		now:              time.Now,
	}
}

// RequestSignup sends a confirmation code for the username/email pair,
// creating the user on first contact. Repeating it for the same pair only
// replaces the code.
func (s *authService) RequestSignup(ctx context.Context, username, email string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if user.Email != email {
			return nil, apperror.Conflict("email", "username registered with a different email")
		}
		code, err := s.assignCode(user)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdateConfirmation(ctx, user.ID, user.ConfirmationCode, user.ConfirmationSentAt); err != nil {
			return nil, err
		}
		s.sendCode(user, code)
		return user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := dto.Validator().Struct(dto.SignupFields{Username: username, Email: email}); err != nil {
		return nil, dto.FieldErrors(err)
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email", "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.NewUser(username, email)
	code, err := s.assignCode(user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent signup
			return nil, apperror.Conflict(conflictField(err), "already registered")
		}
		return nil, err
	}
	s.sendCode(user, code)
	return user, nil
}

// ObtainToken exchanges a confirmation code for a token pair. The checks run
// in a fixed order so a caller can tell a missing user from a bad code.
func (s *authService) ObtainToken(ctx context.Context, username, code string) (*TokenPair, error) {
	if username == "" {
		return nil, apperror.Validation("username", "this field is required")
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, err
	}
	if code == "" {
		return nil, apperror.Validation("confirmation_code", "this field is required")
	}
	if !auth.VerifyCode(user.ConfirmationCode, code) {
		return nil, apperror.InvalidCredentials("invalid confirmation code")
	}
	now := s.now()
	if s.codeExpired(user, now) {
		return nil, apperror.InvalidCredentials("confirmation code has expired")
	}

	// only the exchange that clears the code it verified may issue tokens
	consumed, err := s.userRepo.ConsumeConfirmation(ctx, user.ID, *user.ConfirmationCode, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, apperror.InvalidCredentials("invalid confirmation code")
	}
	user.ConfirmationCode = nil
	user.ConfirmationSentAt = nil
	user.LastLogin = &now

	return s.issuePair(ctx, user)
}

// RefreshToken rotates a refresh token: the old one is revoked and a new pair issued.
func (s *authService) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, err := s.parse(refresh, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NotAuthenticated("token is invalid or expired")
	}

	stored, err := s.refreshTokenRepo.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotAuthenticated("token is invalid or expired")
		}
		return nil, err
	}
	if !stored.Usable(s.now()) || stored.UserID != claims.UserID() {
		return nil, apperror.NotAuthenticated("token is invalid or expired")
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotAuthenticated("user no longer exists")
		}
		return nil, err
	}

	if err := s.refreshTokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}
	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, err
	}
	return pair, nil
}

// RevokeToken invalidates a refresh token. Unknown or malformed tokens are
// treated as already revoked.
func (s *authService) RevokeToken(ctx context.Context, refresh string) error {
	claims, err := s.parse(refresh, tokenTypeRefresh)
	if err != nil {
		return nil
	}
	if err := s.refreshTokenRepo.Revoke(ctx, claims.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// ValidateToken parses an access token. Refresh tokens are rejected.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, tokenTypeAccess)
}

func (s *authService) parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Type != wantType || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := s.now()

	access, err := s.sign(Claims{
		Username: user.Username,
		Type:     tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	})
	if err != nil {
		return nil, err
	}

	stored := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.refreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(ctx, stored); err != nil {
		return nil, err
	}
	refresh, err := s.sign(Claims{
		Type: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        stored.ID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(stored.ExpiresAt),
		},
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *authService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// assignCode replaces the user's code and returns the plaintext to send.
func (s *authService) assignCode(user *models.User) (string, error) {
	code, err := auth.GenerateCode()
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	hashed, err := auth.HashCode(code)
	if err != nil {
		return "", fmt.Errorf("hash confirmation code: %w", err)
	}
	sentAt := s.now()
	user.ConfirmationCode = &hashed
	user.ConfirmationSentAt = &sentAt
	return code, nil
}

func (s *authService) codeExpired(user *models.User, now time.Time) bool {
	if s.codeTTL <= 0 || user.ConfirmationSentAt == nil {
		return false
	}
	return now.After(user.ConfirmationSentAt.Add(s.codeTTL))
}

func (s *authService) sendCode(user *models.User, code string) {
	body := fmt.Sprintf("Hello %s,\n\nyour confirmation code is %s\n", user.Username, code)
	s.notifier.Notify(user.Email, confirmationSubject, body)
}
