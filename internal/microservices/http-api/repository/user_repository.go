package repository

import (
	"context"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
// Lookups return gorm.ErrRecordNotFound (wrapped) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateConfirmation(ctx context.Context, id string, hash *string, sentAt *time.Time) error
	// ConsumeConfirmation clears the code only if it still equals hash and
	// reports whether this call was the one that cleared it.
	ConsumeConfirmation(ctx context.Context, id, hash string, at time.Time) (bool, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return wrap("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return wrap("update user", r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return wrap("delete user", r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// return nil on miss so callers never mistake a zero value for a found user
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrap("find user by username", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrap("find user by id", err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrap("find user by email", err)
	}
	return &user, nil
}

// List returns users ordered by username, optionally filtered by a username substring.
func (r *userRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		q = q.Where("username ILIKE ?", "%"+search+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap("count users", err)
	}
	if err := q.Order("username asc").Limit(pageSize).Offset(offset(page, pageSize)).Find(&users).Error; err != nil {
		return nil, 0, wrap("list users", err)
	}
	return users, total, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
	return wrap("touch last login", err)
}

// UpdateConfirmation writes only the code columns so a stale copy of the user
// cannot overwrite a concurrent role or profile change.
func (r *userRepository) UpdateConfirmation(ctx context.Context, id string, hash *string, sentAt *time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"confirmation_code_hash": hash,
		"confirmation_sent_at":   sentAt,
	}).Error
	return wrap("update confirmation code", err)
}

func (r *userRepository) ConsumeConfirmation(ctx context.Context, id, hash string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND confirmation_code_hash = ?", id, hash).
		Updates(map[string]any{
			"confirmation_code_hash": nil,
			"confirmation_sent_at":   nil,
			"last_login":             at,
		})
	if res.Error != nil {
		return false, wrap("consume confirmation code", res.Error)
	}
	return res.RowsAffected == 1, nil
}
