package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Review, error)
	ExistsForAuthor(ctx context.Context, titleID int64, authorID string) (bool, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	ScoresByTitle(ctx context.Context, titleIDs []int64) (map[int64][]int, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create a new review; a second review by the same author on the same title
// fails with ErrDuplicate through idx_reviews_author_title.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return wrap("create review", r.db.WithContext(ctx).Omit("Author", "Title").Create(review).Error)
}

// Update writes text and score only; title and author never change.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Model(review).
		Select("text", "score").
		Updates(map[string]any{"text": review.Text, "score": review.Score}).Error
	return wrap("update review", err)
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	return wrap("delete review", r.db.WithContext(ctx).Delete(&models.Review{}, id).Error)
}

func (r *reviewRepository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Preload("Author").First(&review, id).Error; err != nil {
		return nil, wrap("find review", err)
	}
	return &review, nil
}

func (r *reviewRepository) ExistsForAuthor(ctx context.Context, titleID int64, authorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		return false, wrap("check review exists", err)
	}
	return count > 0, nil
}

// ListByTitle retrieves the reviews of one title, newest first.
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, wrap("count reviews", err)
	}

	err := r.db.WithContext(ctx).Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, wrap("list reviews", err)
	}
	return reviews, total, nil
}

// ScoresByTitle returns every review score grouped by title.
func (r *reviewRepository) ScoresByTitle(ctx context.Context, titleIDs []int64) (map[int64][]int, error) {
	scores := make(map[int64][]int, len(titleIDs))
	if len(titleIDs) == 0 {
		return scores, nil
	}

	var rows []struct {
		TitleID int64
		Score   int
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, score").
		Where("title_id IN ?", titleIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("load review scores", err)
	}
	for _, row := range rows {
		scores[row.TitleID] = append(scores[row.TitleID], row.Score)
	}
	return scores, nil
}
