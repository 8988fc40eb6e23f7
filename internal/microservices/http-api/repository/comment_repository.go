package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return wrap("create comment", r.db.WithContext(ctx).Omit("Author", "Review").Create(comment).Error)
}

// Update an existing comment's text
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Model(comment).Update("text", comment.Text).Error
	return wrap("update comment", err)
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	return wrap("delete comment", r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error)
}

// FindByID retrieves a comment by its ID
func (r *commentRepository) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, wrap("find comment", err)
	}
	return &comment, nil
}

// ListByReview retrieves the comments on one review, oldest first
func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, wrap("count comments", err)
	}

	err := r.db.WithContext(ctx).Where("review_id = ?", reviewID).
		Preload("Author").
		Order("pub_date ASC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, wrap("list comments", err)
	}
	return comments, total, nil
}
