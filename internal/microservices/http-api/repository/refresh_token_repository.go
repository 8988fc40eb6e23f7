package repository

import (
	"context"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RefreshTokenRepository handles database operations for refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, refreshToken *models.RefreshToken) error
	FindByID(ctx context.Context, id string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// refreshTokenRepository is the GORM implementation of RefreshTokenRepository
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new instance of RefreshTokenRepository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, refreshToken *models.RefreshToken) error {
	return wrap("create refresh token", r.db.WithContext(ctx).Create(refreshToken).Error)
}

// FindByID looks a refresh token up by its jti.
func (r *refreshTokenRepository) FindByID(ctx context.Context, id string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).First(&refreshToken, "id = ?", id).Error; err != nil {
		return nil, wrap("find refresh token", err)
	}
	return &refreshToken, nil
}

// Revoke marks a refresh token as revoked
func (r *refreshTokenRepository) Revoke(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&models.RefreshToken{}).Where("id = ?", id).Update("revoked", true).Error
	return wrap("revoke refresh token", err)
}

// DeleteExpired removes tokens that expired or were revoked before now.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ? OR revoked = ?", now, true).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, wrap("delete expired refresh tokens", res.Error)
	}
	return res.RowsAffected, nil
}
